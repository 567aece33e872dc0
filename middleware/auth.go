package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/magicolala/chess-arena/utils"
)

type contextKey string

const playerContextKey contextKey = "player_id"

var ErrNoPlayerInContext = errors.New("player id not found in request context")

// Authenticate verifies the Bearer token and stores the player ID on the
// request context for handlers downstream.
func Authenticate(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}

			playerID, err := utils.ParsePlayerID(strings.TrimPrefix(header, "Bearer "), jwtSecret)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, playerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPlayerIDFromContext(ctx context.Context) (int, error) {
	playerID, ok := ctx.Value(playerContextKey).(int)
	if !ok {
		return 0, ErrNoPlayerInContext
	}
	return playerID, nil
}
