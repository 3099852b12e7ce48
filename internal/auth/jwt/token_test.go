package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Issuer:        "test",
	})
}

func TestManager_AccessRoundTrip(t *testing.T) {
	m := newTestManager()
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "a@b.it")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "a@b.it", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestManager_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := newTestManager()

	refresh, err := m.GenerateRefreshToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Expired(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAccessToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_TokenIDsAreUnique(t *testing.T) {
	m := newTestManager()
	id := uuid.New()

	a, _ := m.GenerateRefreshToken(id, "")
	b, _ := m.GenerateRefreshToken(id, "")
	ca, _ := m.ValidateRefreshToken(a)
	cb, _ := m.ValidateRefreshToken(b)
	assert.NotEqual(t, ca.ID, cb.ID)
}
