package handlers

import (
	"net/http"
	"strconv"

	"github.com/magicolala/chess-arena/middleware"
	"github.com/magicolala/chess-arena/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	hydraService      services.HydraService
	scoringService    services.ScoringService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	hydraService services.HydraService,
	scoringService services.ScoringService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		hydraService:      hydraService,
		scoringService:    scoringService,
	}
}

// Create godoc
// @Summary      Create a tournament
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        input body services.CreateTournamentInput true "Tournament data"
// @Success      201 {object} models.Tournament
// @Security     BearerAuth
// @Router       /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get godoc
// @Summary      Fetch a tournament by ID
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} models.Tournament
// @Router       /tournaments/{tournamentID} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Join godoc
// @Summary      Register the caller as a tournament participant
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      201 {object} models.TournamentParticipant
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/join [post]
func (h *TournamentHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.tournamentService.JoinTournament(r.Context(), playerID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, participant, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinQueue godoc
// @Summary      Enter the tournament matchmaking queue
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} services.HydraJoinOutput
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/queue [post]
func (h *TournamentHandler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MaxGames int `json:"max_games,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	out, err := h.hydraService.JoinQueue(r.Context(), playerID, tournamentID, input.MaxGames)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, out, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LeaveQueue godoc
// @Summary      Withdraw from the tournament matchmaking queue
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} handlers.jsonResponse
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/queue/leave [post]
func (h *TournamentHandler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetPlayerIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	removed, err := h.hydraService.LeaveQueue(r.Context(), playerID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"removed": removed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResult godoc
// @Summary      Record the result of a tournament game
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Success      200 {object} services.RecordHydraResultOutput
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/results [post]
func (h *TournamentHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		GameID             int                   `json:"game_id"`
		WhiteParticipantID int                   `json:"white_participant_id"`
		BlackParticipantID int                   `json:"black_participant_id"`
		Outcome            services.HydraOutcome `json:"outcome"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	out, err := h.scoringService.RecordHydraResult(r.Context(), services.RecordHydraResultInput{
		TournamentID:       tournamentID,
		GameID:             input.GameID,
		WhiteParticipantID: input.WhiteParticipantID,
		BlackParticipantID: input.BlackParticipantID,
		Outcome:            input.Outcome,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, out, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leaderboard godoc
// @Summary      Tournament standings ordered by score
// @Tags         tournaments
// @Produce      json
// @Param        tournamentID path int true "Tournament ID"
// @Param        limit query int false "Maximum entries returned"
// @Success      200 {array} models.LeaderboardEntry
// @Router       /tournaments/{tournamentID}/leaderboard [get]
func (h *TournamentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			badRequestResponse(w, r, errInvalidLimit)
			return
		}
	}

	entries, err := h.tournamentService.GetLeaderboard(r.Context(), tournamentID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, entries, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
