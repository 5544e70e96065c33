package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/config"
	"shortlink-go/internal/dto"
	"shortlink-go/internal/service"
)

// Resolver 由 service.Resolver 实现
type Resolver interface {
	Resolve(ctx context.Context, code string, req service.RequestContext) (*service.ResolutionResult, error)
	VerifyAndResolve(ctx context.Context, code, password string, req service.RequestContext) (*service.ResolutionResult, error)
}

// RedirectHandler 公开的短链访问入口
type RedirectHandler struct {
	resolver Resolver
	geo      config.GeoConfig
	logger   *zap.Logger
}

func NewRedirectHandler(resolver Resolver, geo config.GeoConfig, logger *zap.Logger) *RedirectHandler {
	return &RedirectHandler{resolver: resolver, geo: geo, logger: logger.Named("redirect")}
}

// Redirect GET /r/:code
func (h *RedirectHandler) Redirect(c *gin.Context) {
	h.redirect(c, c.Param("code"))
}

// NoRoute 根路径下的 /:code，其余未匹配的请求返回 404
func (h *RedirectHandler) NoRoute(c *gin.Context) {
	code := strings.TrimPrefix(c.Request.URL.Path, "/")
	if c.Request.Method != http.MethodGet || code == "" || strings.Contains(code, "/") {
		_ = c.Error(apperrors.NotFound("error.link_not_found"))
		return
	}
	h.redirect(c, code)
}

func (h *RedirectHandler) redirect(c *gin.Context, code string) {
	result, err := h.resolver.Resolve(c.Request.Context(), code, h.requestContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	if result.Outcome == service.OutcomePasswordRequired {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, dto.PasswordRequiredResponse{RequiresPassword: true, LinkID: result.LinkID})
		return
	}

	// 每次访问都要经过服务端计数
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusFound, result.DestinationURL)
}

// Verify POST /r/:code/verify
func (h *RedirectHandler) Verify(c *gin.Context) {
	var req dto.VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Request body binding failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	result, err := h.resolver.VerifyAndResolve(c.Request.Context(), c.Param("code"), req.Password, h.requestContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.RedirectResponse{RedirectURL: result.DestinationURL})
}

func (h *RedirectHandler) requestContext(c *gin.Context) service.RequestContext {
	req := service.RequestContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	}
	if h.geo.CountryHeader != "" {
		req.Country = geoValue(c.GetHeader(h.geo.CountryHeader))
	}
	if h.geo.CityHeader != "" {
		req.City = geoValue(c.GetHeader(h.geo.CityHeader))
	}
	return req
}

// geoValue Cloudflare 用 XX / T1 表示未知或 Tor
func geoValue(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToUpper(v) {
	case "XX", "T1":
		return ""
	}
	return v
}
