package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dias221467/World_Chronicle/internal/apperrors"
	"github.com/Dias221467/World_Chronicle/internal/services"
	"github.com/Dias221467/World_Chronicle/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// WorldHandler handles HTTP requests related to worlds and memberships.
type WorldHandler struct {
	Service *services.WorldService
}

// NewWorldHandler creates a new instance of WorldHandler.
func NewWorldHandler(service *services.WorldService) *WorldHandler {
	return &WorldHandler{Service: service}
}

// CreateWorldHandler handles the creation of a new world.
func (h *WorldHandler) CreateWorldHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt during world creation")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during world creation")
		writeError(w, apperrors.InvalidInput("invalid request payload"))
		return
	}
	defer r.Body.Close()

	world, err := h.Service.CreateWorld(r.Context(), claims.UserID, body.Name, body.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":  claims.UserID,
		"worldID": world.ID,
	}).Info("World successfully created")
	writeJSON(w, http.StatusCreated, world)
}

// GetWorldHandler handles fetching a world by id.
func (h *WorldHandler) GetWorldHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	world, err := h.Service.GetWorld(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, world)
}

// GetMyWorldsHandler lists the worlds hosted by the logged-in user.
func (h *WorldHandler) GetMyWorldsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	worlds, err := h.Service.ListWorldsByHost(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, worlds)
}

// RequestJoinHandler handles a membership request for a character.
func (h *WorldHandler) RequestJoinHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized join request attempt")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}
	worldID := mux.Vars(r)["id"]

	var body struct {
		CharacterID string `json:"character_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during join request")
		writeError(w, apperrors.InvalidInput("invalid request payload"))
		return
	}
	defer r.Body.Close()

	affiliation, err := h.Service.RequestJoinWorld(r.Context(), claims.UserID, worldID, body.CharacterID)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":        claims.UserID,
		"affiliationID": affiliation.ID,
	}).Info("Join request created")
	writeJSON(w, http.StatusCreated, affiliation)
}

// ApproveAffiliationHandler handles approval of a pending affiliation by the
// world host.
func (h *WorldHandler) ApproveAffiliationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized affiliation approval attempt")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	affiliation, err := h.Service.ApproveAffiliation(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, affiliation)
}
