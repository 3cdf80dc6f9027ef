package util

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"gigledger/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("addr:alice", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	addr, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	require.Equal(t, model.Address("addr:alice"), addr)
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT("addr:alice", "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	require.Error(t, err)
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	_, err := ParseJWT("not-a-token", "secret")
	require.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/jobs", nil)
	require.Empty(t, ExtractToken(r))

	r.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", ExtractToken(r))

	r.Header.Set("Authorization", "bearer abc123")
	require.Equal(t, "abc123", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc123")
	require.Empty(t, ExtractToken(r))

	r.Header.Set("Authorization", "abc123")
	require.Empty(t, ExtractToken(r))
}
