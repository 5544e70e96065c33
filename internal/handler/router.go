package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"shortlink-go/internal/i18n"
	"shortlink-go/internal/middleware"
)

// RouterDeps 路由需要的全部依赖
type RouterDeps struct {
	Redirect  *RedirectHandler
	Links     *LinkHandler
	Analytics *AnalyticsHandler
	Catalog   *i18n.Catalog
	JWTSecret string
	Ping      Pinger
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// NewRouter 注册所有路由。/api 需要 JWT，短链访问公开
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ZapGinLogger(d.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(d.Catalog))
	r.Use(middleware.GlobalErrorMiddleware(d.Logger))

	r.GET("/health", Health(d.Ping))
	if d.Gatherer != nil {
		r.GET("/metrics", Metrics(d.Gatherer))
	}

	r.GET("/r/:code", d.Redirect.Redirect)
	r.POST("/r/:code/verify", d.Redirect.Verify)

	api := r.Group("/api", middleware.JWTAuth(d.JWTSecret))
	{
		api.POST("/links", d.Links.Create)
		api.GET("/links", d.Links.List)
		api.GET("/links/:id", d.Links.Get)
		api.PUT("/links/:id", d.Links.Update)
		api.DELETE("/links/:id", d.Links.Delete)
		api.GET("/links/:id/analytics", d.Analytics.LinkReport)
		api.GET("/links/:id/stats", d.Analytics.LinkStats)
		api.GET("/analytics/overview", d.Analytics.Overview)
	}

	// 根路径短码：/abc123
	r.NoRoute(d.Redirect.NoRoute)
	return r
}
