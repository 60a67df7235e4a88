package middleware

import (
	"strings"

	"campus-marketplace/internal/auth"
	autherrors "campus-marketplace/internal/auth/errors"
	"campus-marketplace/internal/pkg/apperror"
	"campus-marketplace/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts the access_token cookie or an Authorization
// Bearer header and sets user_id_validated for downstream handlers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get token
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie(auth.AccessTokenCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWithError(c, autherrors.ErrUnauthorized)
			return
		}

		// 2. Parse & Validate
		claims, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			abortWithError(c, err)
			return
		}

		// 3. Set validated values
		c.Set("user_id_validated", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
	c.Abort()
}
