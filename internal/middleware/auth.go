package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"shortlink-go/internal/apperrors"
)

const accountIDKey = "account_id"

var errEmptySecret = errors.New("jwt secret is not configured")

// JWTAuth 校验 Authorization: Bearer <token>（HS256），subject 即账户 ID。
// secret 为空时拒绝所有请求
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			_ = c.Error(apperrors.Unauthorized("error.unauthorized").WithCause(errEmptySecret))
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			_ = c.Error(apperrors.Unauthorized("error.unauthorized"))
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if len(key) == 0 {
				return nil, errEmptySecret
			}
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err == nil && (!token.Valid || claims.Subject == "") {
			err = errors.New("missing subject")
		}
		if err != nil {
			_ = c.Error(apperrors.Unauthorized("error.unauthorized").WithCause(err))
			c.Abort()
			return
		}

		c.Set(accountIDKey, claims.Subject)
		c.Next()
	}
}

// AccountID 当前请求的账户，只在 JWTAuth 之后可用
func AccountID(c *gin.Context) (string, bool) {
	id := c.GetString(accountIDKey)
	return id, id != ""
}
