package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", "test", time.Hour)

	token, err := m.GenerateToken("u1", "a@example.com", "Abduselam", "", "ya29.token")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "ya29.token", claims.ProviderToken)
	assert.Equal(t, "test", claims.Issuer)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := NewManager("one", "test", time.Hour).GenerateToken("u1", "", "", "", "")
	require.NoError(t, err)

	_, err = NewManager("two", "test", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	m := NewManager("secret", "test", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateToken("u1", "", "", "", "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Missing(t *testing.T) {
	_, err := NewManager("", "", 0).ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
