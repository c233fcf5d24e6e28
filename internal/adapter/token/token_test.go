package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT(t *testing.T) {
	p := domain.Principal{UserID: "u1", Email: "u1@shop.test", IsAdmin: true}

	t.Run("RoundTrip", func(t *testing.T) {
		j, err := NewJWT("secret", 7*24*time.Hour)
		require.NoError(t, err)

		s, err := j.Issue(p)
		require.NoError(t, err)

		got, err := j.Verify(s)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		issuer, err := NewJWT("secret", time.Hour)
		require.NoError(t, err)
		verifier, err := NewJWT("other", time.Hour)
		require.NoError(t, err)

		s, err := issuer.Issue(p)
		require.NoError(t, err)

		_, err = verifier.Verify(s)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		j, err := NewJWT("secret", time.Hour)
		require.NoError(t, err)
		j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

		s, err := j.Issue(p)
		require.NoError(t, err)

		j.now = time.Now
		_, err = j.Verify(s)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("OtherAlgorithm", func(t *testing.T) {
		j, err := NewJWT("secret", time.Hour)
		require.NoError(t, err)

		c := claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = j.Verify(s)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("Malformed", func(t *testing.T) {
		j, err := NewJWT("secret", time.Hour)
		require.NoError(t, err)

		_, err = j.Verify("not.a.token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("BadConfig", func(t *testing.T) {
		_, err := NewJWT("", time.Hour)
		assert.Error(t, err)
		_, err = NewJWT("secret", 0)
		assert.Error(t, err)
	})
}
