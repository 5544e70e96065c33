package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"shortlink-go/internal/dto"
	"shortlink-go/internal/i18n"
	"shortlink-go/internal/middleware"
	"shortlink-go/internal/model"
	"shortlink-go/response"
)

// Analytics 由 service.AnalyticsService 实现
type Analytics interface {
	PerLinkReport(ctx context.Context, accountID, linkID string) (*dto.LinkReport, error)
	AccountOverview(ctx context.Context, accountID string) (*dto.AccountOverview, error)
}

// DailyStats 由 service.StatsService 实现
type DailyStats interface {
	DailyStats(ctx context.Context, accountID, linkID string) ([]model.DailyStat, error)
}

type AnalyticsHandler struct {
	analytics Analytics
	stats     DailyStats
}

func NewAnalyticsHandler(analytics Analytics, stats DailyStats) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, stats: stats}
}

// LinkReport GET /api/links/:id/analytics
func (h *AnalyticsHandler) LinkReport(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	report, err := h.analytics.PerLinkReport(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(report, i18n.T(c.Request.Context(), "success", nil)))
}

// Overview GET /api/analytics/overview
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	overview, err := h.analytics.AccountOverview(c.Request.Context(), accountID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(overview, i18n.T(c.Request.Context(), "success", nil)))
}

// LinkStats GET /api/links/:id/stats
func (h *AnalyticsHandler) LinkStats(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	rows, err := h.stats.DailyStats(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if rows == nil {
		rows = []model.DailyStat{}
	}
	c.JSON(http.StatusOK, response.OK(rows, i18n.T(c.Request.Context(), "success", nil)))
}
