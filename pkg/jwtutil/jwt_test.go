package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUtil(key string) *JWTUtil {
	return NewJWTUtil(&JWTConfig{SigningKey: key, ExpirationHours: 8})
}

func TestIssueAndVerify(t *testing.T) {
	util := newTestUtil("test-signing-key")
	businessID := uint(7)

	token, err := util.Issue("maria", 42, "seller", &businessID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := util.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "seller", claims.Role)
	require.NotNil(t, claims.BusinessID)
	assert.Equal(t, uint(7), *claims.BusinessID)
	assert.Equal(t, "maria", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyNilBusiness(t *testing.T) {
	util := newTestUtil("test-signing-key")

	token, err := util.Issue("root", 1, "superadmin", nil)
	require.NoError(t, err)

	claims, err := util.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.BusinessID)
}

func TestVerifyFailuresAreUniform(t *testing.T) {
	util := newTestUtil("test-signing-key")

	t.Run("garbage", func(t *testing.T) {
		_, err := util.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := newTestUtil("another-key")
		token, err := other.Issue("maria", 42, "seller", nil)
		require.NoError(t, err)

		_, err = util.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		now := time.Now()
		claims := SessionClaims{
			Username: "maria",
			UserID:   42,
			Role:     "seller",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "maria",
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = util.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned algorithm rejected", func(t *testing.T) {
		claims := SessionClaims{
			Username: "maria",
			Role:     "seller",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = util.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing identity claims rejected", func(t *testing.T) {
		claims := SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = util.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
