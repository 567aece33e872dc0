package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(42, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	playerID, err := ParsePlayerID(token, secret)
	require.NoError(t, err)
	assert.Equal(t, 42, playerID)
}

func TestParsePlayerIDRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, []byte("right-secret"))
	require.NoError(t, err)

	_, err = ParsePlayerID(token, []byte("wrong-secret"))
	require.Error(t, err)
}

func TestParsePlayerIDRejectsGarbage(t *testing.T) {
	_, err := ParsePlayerID("not.a.token", []byte("secret"))
	require.Error(t, err)
}
