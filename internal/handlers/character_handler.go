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

// CharacterHandler handles HTTP requests related to characters.
type CharacterHandler struct {
	Service *services.CharacterService
}

// NewCharacterHandler creates a new instance of CharacterHandler.
func NewCharacterHandler(service *services.CharacterService) *CharacterHandler {
	return &CharacterHandler{Service: service}
}

type characterBody struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// CreateCharacterHandler handles the creation of a new character.
func (h *CharacterHandler) CreateCharacterHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt during character creation")
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	var body characterBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during character creation")
		writeError(w, apperrors.InvalidInput("invalid request payload"))
		return
	}
	defer r.Body.Close()

	character, err := h.Service.CreateCharacter(r.Context(), claims.UserID, body.Name, body.Bio, body.AvatarURL)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":      claims.UserID,
		"characterID": character.ID,
	}).Info("Character successfully created")
	writeJSON(w, http.StatusCreated, character)
}

// GetCharacterHandler handles fetching a character by id.
func (h *CharacterHandler) GetCharacterHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	character, err := h.Service.GetCharacter(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, character)
}

// UpdateCharacterHandler handles a partial update of a character.
func (h *CharacterHandler) UpdateCharacterHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	var body characterBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during character update")
		writeError(w, apperrors.InvalidInput("invalid request payload"))
		return
	}
	defer r.Body.Close()

	character, err := h.Service.UpdateCharacter(r.Context(), claims.UserID, mux.Vars(r)["id"], body.Name, body.Bio, body.AvatarURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, character)
}

// GetMyCharactersHandler lists the characters owned by the logged-in user.
func (h *CharacterHandler) GetMyCharactersHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthenticated("authentication required"))
		return
	}

	characters, err := h.Service.ListCharacters(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, characters)
}
