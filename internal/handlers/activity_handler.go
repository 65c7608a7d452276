package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	"github.com/Dias221467/World_Chronicle/internal/services"
	"github.com/Dias221467/World_Chronicle/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ActivityHandler handles HTTP requests related to activities.
type ActivityHandler struct {
	Service *services.ActivityService
}

// NewActivityHandler creates a new instance of ActivityHandler.
func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// PostActivityHandler handles the creation of a new activity.
func (h *ActivityHandler) PostActivityHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt during activity creation")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	var body struct {
		AffiliationID  string   `json:"affiliation_id"`
		Content        string   `json:"content"`
		CoCreators     []string `json:"co_creators"`
		IdempotencyKey string   `json:"idempotency_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during activity creation")
		writeError(w, apperrors.InvalidInput("invalid request payload"))
		return
	}
	defer r.Body.Close()

	activity, err := h.Service.PostActivity(r.Context(), claims.UserID, services.PostActivityInput{
		AffiliationID:  body.AffiliationID,
		Content:        body.Content,
		CoCreators:     body.CoCreators,
		IdempotencyKey: body.IdempotencyKey,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":     claims.UserID,
		"activityID": activity.ID,
		"status":     activity.Status,
	}).Info("Activity successfully created")
	writeJSON(w, http.StatusCreated, activity)
}

// SignActivityHandler handles acknowledgement of an activity by a co-creator.
func (h *ActivityHandler) SignActivityHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized activity sign attempt")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}
	activityID := mux.Vars(r)["id"]

	var body struct {
		AffiliationID string `json:"affiliation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during activity signing")
		writeError(w, apperrors.InvalidInput("invalid request payload"))
		return
	}
	defer r.Body.Close()

	activity, err := h.Service.SignActivity(r.Context(), claims.UserID, activityID, body.AffiliationID)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":     claims.UserID,
		"activityID": activityID,
		"status":     activity.Status,
	}).Info("Activity successfully signed")
	writeJSON(w, http.StatusOK, activity)
}

// RejectActivityHandler handles redaction of an activity.
func (h *ActivityHandler) RejectActivityHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized activity reject attempt")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}
	activityID := mux.Vars(r)["id"]

	var body struct {
		AffiliationID string `json:"affiliation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during activity rejection")
		writeError(w, apperrors.InvalidInput("invalid request payload"))
		return
	}
	defer r.Body.Close()

	activity, err := h.Service.RejectActivity(r.Context(), claims.UserID, activityID, body.AffiliationID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// ArchiveActivityHandler opportunistically archives an expired pending
// activity. A non-expired activity is returned unchanged.
func (h *ActivityHandler) ArchiveActivityHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized activity archive attempt")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}
	activityID := mux.Vars(r)["id"]

	activity, err := h.Service.ArchivePendingActivity(r.Context(), claims.UserID, activityID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// GetWorldTimelineHandler lists the published activities of a world.
func (h *ActivityHandler) GetWorldTimelineHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized timeline fetch attempt")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}
	worldID := mux.Vars(r)["id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperrors.InvalidInput("invalid limit"))
			return
		}
		limit = parsed
	}

	activities, err := h.Service.ListWorldTimeline(r.Context(), worldID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activities)
}
