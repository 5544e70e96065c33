package middleware

import (
	"github.com/gin-gonic/gin"
	"shortlink-go/internal/i18n"
)

// I18nMiddleware 按 Accept-Language 选择语言，默认使用配置中的 default_lang
func I18nMiddleware(catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := catalog.Match(c.GetHeader("Accept-Language"))
		c.Request = c.Request.WithContext(i18n.WithLocalizer(c.Request.Context(), catalog.Localizer(lang)))
		c.Next()
	}
}
