package handlers

import (
	"net/http"

	"github.com/magicolala/chess-arena/middleware"
	"github.com/magicolala/chess-arena/services"
)

type QueueHandler struct {
	matchmakingService services.MatchmakingService
}

func NewQueueHandler(matchmakingService services.MatchmakingService) *QueueHandler {
	return &QueueHandler{matchmakingService: matchmakingService}
}

// Join godoc
// @Summary      Join the matchmaking queue for a time control
// @Tags         queue
// @Accept       json
// @Produce      json
// @Success      200 {object} services.JoinQueueOutput
// @Security     BearerAuth
// @Router       /queue/join [post]
func (h *QueueHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		TimeControl string `json:"time_control"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	out, err := h.matchmakingService.JoinQueue(r.Context(), playerID, input.TimeControl)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, out, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leave godoc
// @Summary      Leave one queue, or every time-control queue when no time control is given
// @Tags         queue
// @Accept       json
// @Produce      json
// @Success      200 {object} handlers.jsonResponse
// @Security     BearerAuth
// @Router       /queue/leave [post]
func (h *QueueHandler) Leave(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		TimeControl *string `json:"time_control,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	removed, err := h.matchmakingService.LeaveQueue(r.Context(), playerID, input.TimeControl)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"removed": removed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
