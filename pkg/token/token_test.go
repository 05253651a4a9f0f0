package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	GenerateSecretKey()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := NewSessionToken("alice@example.com", now)
	require.NoError(t, err)

	email, err := ParseSessionToken(tok, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestSessionTokenExpired(t *testing.T) {
	GenerateSecretKey()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tok, err := NewSessionToken("alice@example.com", now)
	require.NoError(t, err)

	_, err = ParseSessionToken(tok, now.Add(SessionTTL+time.Minute))
	assert.Error(t, err)
}

func TestSessionTokenTampered(t *testing.T) {
	GenerateSecretKey()
	now := time.Now()

	tok, err := NewSessionToken("alice@example.com", now)
	require.NoError(t, err)

	// 篡改payload部分的一个字节
	tampered := "A" + tok[1:]
	_, err = ParseSessionToken(tampered, now)
	assert.Error(t, err)

	_, err = ParseSessionToken("not-a-token", now)
	assert.Error(t, err)
}
