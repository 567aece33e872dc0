package handlers

import (
	"net/http"

	"github.com/magicolala/chess-arena/models"
	"github.com/magicolala/chess-arena/services"
)

type GameHandler struct {
	ratingService services.RatingService
}

func NewGameHandler(ratingService services.RatingService) *GameHandler {
	return &GameHandler{ratingService: ratingService}
}

// RecordResult godoc
// @Summary      Record the outcome of a game and apply rating changes
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        gameID path int true "Game ID"
// @Success      200 {object} services.RecordResultOutput
// @Security     BearerAuth
// @Router       /games/{gameID}/result [post]
func (h *GameHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Outcome models.Outcome `json:"outcome"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	out, err := h.ratingService.RecordResult(r.Context(), gameID, input.Outcome)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, out, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
