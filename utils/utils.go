package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

// GenerateJWT issues a signed HS256 token carrying the player ID.
func GenerateJWT(playerID int, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"player_id": playerID,
		"iat":       now.Unix(),
		"exp":       now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParsePlayerID validates the token and extracts the player ID claim.
func ParsePlayerID(tokenString string, secret []byte) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}
	idRaw, ok := claims["player_id"]
	if !ok {
		return 0, errors.New("player_id not found in token")
	}
	idFloat, ok := idRaw.(float64)
	if !ok {
		return 0, errors.New("player_id has invalid type")
	}
	return int(idFloat), nil
}
