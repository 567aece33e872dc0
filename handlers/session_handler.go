package handlers

import (
	"net/http"

	"github.com/magicolala/chess-arena/middleware"
	"github.com/magicolala/chess-arena/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create godoc
// @Summary      Create a draft round-robin session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        input body services.CreateSessionInput true "Session data"
// @Success      201 {object} models.Session
// @Security     BearerAuth
// @Router       /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateSessionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.CreateSession(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, session, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary      Fetch a session with its participants
// @Tags         sessions
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} models.Session
// @Router       /sessions/{sessionID} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, session, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Join godoc
// @Summary      Join a draft session via its invite code
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Success      201 {object} models.SessionParticipant
// @Security     BearerAuth
// @Router       /sessions/join [post]
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		InviteCode string `json:"invite_code"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.sessionService.JoinByInvite(r.Context(), playerID, input.InviteCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, participant, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Start godoc
// @Summary      Start a session and schedule its round-robin games
// @Tags         sessions
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Success      200 {object} handlers.jsonResponse
// @Security     BearerAuth
// @Router       /sessions/{sessionID}/start [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	gameCount, err := h.sessionService.StartSession(r.Context(), sessionID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game_count": gameCount}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListGames godoc
// @Summary      List every game scheduled for a session
// @Tags         sessions
// @Produce      json
// @Param        sessionID path int true "Session ID"
// @Success      200 {array} models.Game
// @Router       /sessions/{sessionID}/games [get]
func (h *SessionHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.sessionService.ListSessionGames(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, games, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
