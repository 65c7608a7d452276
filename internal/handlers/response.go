package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	log "github.com/sirupsen/logrus"
)

type errorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps a service error onto its HTTP status and a stable
// machine-readable body. Internal details are logged, never surfaced.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeInternal {
		log.WithError(err).Error("Request failed with internal error")
	}
	writeJSON(w, apperrors.HTTPStatus(code), errorBody{
		Code:    code,
		Message: apperrors.MessageOf(err),
	})
}
