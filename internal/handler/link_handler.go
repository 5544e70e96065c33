package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/dto"
	"shortlink-go/internal/i18n"
	"shortlink-go/internal/middleware"
	"shortlink-go/internal/model"
	"shortlink-go/response"
)

// LinkManager 由 service.LinkService 实现
type LinkManager interface {
	Create(ctx context.Context, accountID string, req *dto.CreateLinkRequest) (*model.Link, error)
	Get(ctx context.Context, accountID, id string) (*model.Link, error)
	List(ctx context.Context, accountID string, page, size int) ([]model.Link, int64, error)
	Update(ctx context.Context, accountID, id string, req *dto.UpdateLinkRequest) (*model.Link, error)
	Delete(ctx context.Context, accountID, id string) error
}

type LinkHandler struct {
	links   LinkManager
	baseURL string
	logger  *zap.Logger
}

func NewLinkHandler(links LinkManager, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{links: links, baseURL: baseURL, logger: logger.Named("link_handler")}
}

// Create POST /api/links
func (h *LinkHandler) Create(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	link, err := h.links.Create(c.Request.Context(), accountID, &req)
	if err != nil {
		h.logger.Warn("Short link creation failed",
			zap.Error(err),
			zap.String("custom_code", req.CustomCode))
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.OK(dto.NewLinkResponse(link, h.baseURL), i18n.T(c.Request.Context(), "success", nil)))
}

// List GET /api/links?page=&size=
func (h *LinkHandler) List(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	links, total, err := h.links.List(c.Request.Context(), accountID, page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}

	list := make([]dto.LinkResponse, 0, len(links))
	for i := range links {
		list = append(list, dto.NewLinkResponse(&links[i], h.baseURL))
	}
	c.JSON(http.StatusOK, response.OK(response.NewPage(page, size, total, list), i18n.T(c.Request.Context(), "success", nil)))
}

// Get GET /api/links/:id
func (h *LinkHandler) Get(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	link, err := h.links.Get(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(dto.NewLinkResponse(link, h.baseURL), i18n.T(c.Request.Context(), "success", nil)))
}

// Update PUT /api/links/:id
func (h *LinkHandler) Update(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	var req dto.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	link, err := h.links.Update(c.Request.Context(), accountID, c.Param("id"), &req)
	if err != nil {
		h.logger.Warn("Short link update failed", zap.Error(err), zap.String("id", c.Param("id")))
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(dto.NewLinkResponse(link, h.baseURL), i18n.T(c.Request.Context(), "success", nil)))
}

// Delete DELETE /api/links/:id
func (h *LinkHandler) Delete(c *gin.Context) {
	accountID, _ := middleware.AccountID(c)

	if err := h.links.Delete(c.Request.Context(), accountID, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(struct{}{}, i18n.T(c.Request.Context(), "success", nil)))
}
