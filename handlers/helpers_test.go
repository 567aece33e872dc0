package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magicolala/chess-arena/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrPlayerNotFound, http.StatusNotFound},
		{services.ErrGameNotFound, http.StatusNotFound},
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrSessionNotFound, http.StatusNotFound},
		{services.ErrEmailConflict, http.StatusConflict},
		{services.ErrNicknameConflict, http.StatusConflict},
		{services.ErrRegistrationConflict, http.StatusConflict},
		{services.ErrInvalidTimeControl, http.StatusBadRequest},
		{services.ErrInvalidOutcome, http.StatusBadRequest},
		{services.ErrInvalidMode, http.StatusBadRequest},
		{services.ErrPasswordTooShort, http.StatusBadRequest},
		{services.ErrInviteInvalid, http.StatusBadRequest},
		{services.ErrGameCapReached, http.StatusUnprocessableEntity},
		{services.ErrNotEnoughParticipants, http.StatusUnprocessableEntity},
		{services.ErrSessionNotDraft, http.StatusUnprocessableEntity},
		{services.ErrTournamentNotActive, http.StatusUnprocessableEntity},
		{services.ErrNotRegistered, http.StatusUnprocessableEntity},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbiddenOperation, http.StatusForbidden},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))
	err := readJSON(httptest.NewRecorder(), req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

func TestReadJSONRejectsEmptyBody(t *testing.T) {
	var dst struct{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := readJSON(httptest.NewRecorder(), req, &dst)
	require.EqualError(t, err, "body must not be empty")
}

func TestReadJSONRejectsTrailingValues(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
	err := readJSON(httptest.NewRecorder(), req, &dst)
	require.EqualError(t, err, "body must only contain a single JSON value")
}

func TestWriteJSONSetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	err := writeJSON(rec, http.StatusTeapot, jsonResponse{"ok": true}, http.Header{"X-Custom": []string{"v"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "v", rec.Header().Get("X-Custom"))
	assert.Contains(t, rec.Body.String(), `"ok": true`)
}
