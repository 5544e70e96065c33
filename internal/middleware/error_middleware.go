package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/i18n"
	"shortlink-go/response"
)

// GlobalErrorMiddleware 把 handler 通过 c.Error 上报的错误转成统一响应，消息按请求语言翻译
func GlobalErrorMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()
		for _, err := range c.Errors {
			var appErr *apperrors.AppError
			if errors.As(err.Err, &appErr) {
				if appErr.Code >= http.StatusInternalServerError {
					logger.Error("Request failed",
						zap.String("path", c.Request.URL.Path),
						zap.Int("status", appErr.Code),
						zap.Error(appErr))
				}
				c.AbortWithStatusJSON(appErr.Code, response.ErrorFromAppError(appErr, i18n.T(ctx, appErr.Message, nil)))
				return
			}
		}

		logger.Error("Unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(c.Errors.Last().Err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(i18n.T(ctx, "error.system", nil)))
	}
}
