package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, "paperdrop")

	signed, expiresAt, err := tokens.Issue(42)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := tokens.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, uint(42), id)
}

func TestTokensRejectExpired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens := NewTokens("secret", time.Minute, "paperdrop").WithClock(func() time.Time { return issued })

	signed, _, err := tokens.Issue(1)
	require.NoError(t, err)

	tokens.WithClock(func() time.Time { return issued.Add(2 * time.Minute) })
	_, err = tokens.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectForeignSecret(t *testing.T) {
	signed, _, err := NewTokens("other", time.Hour, "paperdrop").Issue(1)
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour, "paperdrop").Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectUnsignedAndGarbage(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, "paperdrop")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, raw := range []string{"", "garbage", unsigned} {
		_, err := tokens.Parse(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", hash)
	require.True(t, CheckPassword(hash, "s3cret!"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("not-a-hash", "s3cret!"))
}
