package auth_test

import (
	"testing"
	"time"

	"campus-marketplace/internal/auth"
	autherrors "campus-marketplace/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := auth.GenerateToken(secret, "user-1", "STUDENT", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "STUDENT", claims.Role)
}

func TestParseToken_Errors(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		token, err := auth.GenerateToken(secret, "user-1", "STUDENT", -time.Minute)
		require.NoError(t, err)

		_, err = auth.ParseToken(secret, token)
		assert.ErrorIs(t, err, autherrors.ErrTokenExpired)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, err := auth.GenerateToken("other", "user-1", "STUDENT", time.Hour)
		require.NoError(t, err)

		_, err = auth.ParseToken(secret, token)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("missing_user_id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		raw, err := token.SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = auth.ParseToken(secret, raw)
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ParseToken(secret, "not-a-token")
		assert.ErrorIs(t, err, autherrors.ErrInvalidToken)
	})
}
