package handlers

import (
	"net/http"

	"github.com/magicolala/chess-arena/middleware"
	"github.com/magicolala/chess-arena/services"
)

// Upload size ceiling for avatars.
const maxAvatarBytes = 5 << 20

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// GetRating godoc
// @Summary      Current rating profile of a player
// @Tags         players
// @Produce      json
// @Param        playerID path int true "Player ID"
// @Success      200 {object} models.RatingProfile
// @Router       /players/{playerID}/rating [get]
func (h *PlayerHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.playerService.GetRating(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, profile, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadAvatar godoc
// @Summary      Upload the caller's avatar image
// @Tags         players
// @Accept       multipart/form-data
// @Produce      json
// @Param        avatar formData file true "Avatar image"
// @Success      200 {object} handlers.jsonResponse
// @Security     BearerAuth
// @Router       /players/avatar [post]
func (h *PlayerHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.playerService.UpdateAvatar(r.Context(), playerID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"avatar_url": url}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
