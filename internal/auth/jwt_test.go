package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

func TestTokenRoundTrip(t *testing.T) {
	tok, err := NewToken(testKey, 42, []string{ScopeRead, ScopeMaintain}, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(testKey, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.True(t, claims.HasScope(ScopeRead))
	assert.True(t, claims.HasScope(ScopeMaintain))
	assert.False(t, claims.HasScope(ScopeRefresh))
}

func TestTokensMintedTogetherAreDistinct(t *testing.T) {
	// identical user, scopes and ttl within the same second must still
	// produce different tokens, or rotation would reissue the token it
	// just revoked
	a, err := NewToken(testKey, 1, []string{ScopeRefresh}, time.Hour)
	require.NoError(t, err)
	b, err := NewToken(testKey, 1, []string{ScopeRefresh}, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	ca, err := ParseToken(testKey, a)
	require.NoError(t, err)
	cb, err := ParseToken(testKey, b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestParseRejectsWrongKey(t *testing.T) {
	tok, err := NewToken(testKey, 1, []string{ScopeRead}, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other-key"), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, err := NewToken(testKey, 1, []string{ScopeRead}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testKey, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
