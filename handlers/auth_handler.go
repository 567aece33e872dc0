package handlers

import (
	"net/http"

	"github.com/magicolala/chess-arena/services"
	"github.com/magicolala/chess-arena/utils"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{authService: authService, jwtSecret: jwtSecret}
}

// Signup godoc
// @Summary      Register a new player
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body services.RegisterInput true "Registration data"
// @Success      201 {object} handlers.jsonResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := utils.GenerateJWT(player.ID, h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player, "token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Signin godoc
// @Summary      Authenticate a player and issue a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body services.LoginInput true "Credentials"
// @Success      200 {object} handlers.jsonResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := utils.GenerateJWT(player.ID, h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player, "token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
