package auth

import (
	"errors"
	"fmt"
	"time"

	autherrors "campus-marketplace/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
)

const AccessTokenCookie = "access_token"

type Claims struct {
	UserID string
	Role   string
}

// GenerateToken signs an HS256 access token carrying user_id and role.
func GenerateToken(secret, userID, role string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", autherrors.ErrTokenGenerationFailed.WithCause(err)
	}
	return signed, nil
}

// ParseToken validates signature and expiry and extracts the claims the
// API relies on.
func ParseToken(secret, raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, autherrors.ErrTokenExpired
		}
		return Claims{}, autherrors.ErrInvalidToken
	}
	if !token.Valid {
		return Claims{}, autherrors.ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, autherrors.ErrInvalidToken
	}

	userID, ok := mc["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, autherrors.ErrInvalidToken
	}
	role, _ := mc["role"].(string)

	return Claims{UserID: userID, Role: role}, nil
}
