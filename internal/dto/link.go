package dto

import (
	"time"

	"shortlink-go/internal/model"
)

// CreateLinkRequest 创建短链
type CreateLinkRequest struct {
	DestinationURL string     `json:"destinationUrl" binding:"required,url,max=2048"`
	CustomCode     string     `json:"customCode" binding:"omitempty,shortcode"`
	Title          string     `json:"title" binding:"max=255"`
	Password       string     `json:"password" binding:"max=72"` // bcrypt 只取前 72 字节
	ExpiresAt      *time.Time `json:"expiresAt"`
}

// UpdateLinkRequest 更新短链，nil 表示不修改
type UpdateLinkRequest struct {
	DestinationURL *string    `json:"destinationUrl" binding:"omitempty,url,max=2048"`
	Title          *string    `json:"title" binding:"omitempty,max=255"`
	Password       *string    `json:"password" binding:"omitempty,max=72"` // 空串表示取消密码
	ExpiresAt      *time.Time `json:"expiresAt"`
	ClearExpiresAt bool       `json:"clearExpiresAt"`
	IsActive       *bool      `json:"isActive"`
}

// VerifyPasswordRequest 访问受密码保护的短链
type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// LinkResponse 返回给调用方的短链，不含密码哈希
type LinkResponse struct {
	ID             string     `json:"id"`
	ShortCode      string     `json:"shortCode"`
	ShortURL       string     `json:"shortUrl,omitempty"`
	DestinationURL string     `json:"destinationUrl"`
	Title          string     `json:"title,omitempty"`
	HasPassword    bool       `json:"hasPassword"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	IsActive       bool       `json:"isActive"`
	ClickCount     int64      `json:"clickCount"`
	TotalUV        int64      `json:"totalUv"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// NewLinkResponse baseURL 为空时不生成 shortUrl
func NewLinkResponse(link *model.Link, baseURL string) LinkResponse {
	resp := LinkResponse{
		ID:             link.ID,
		ShortCode:      link.ShortCode,
		DestinationURL: link.DestinationURL,
		HasPassword:    link.HasPassword(),
		ExpiresAt:      link.ExpiresAt,
		IsActive:       link.IsActive,
		ClickCount:     link.ClickCount,
		TotalUV:        link.TotalUV,
		CreatedAt:      link.CreatedAt,
	}
	if link.Title != nil {
		resp.Title = *link.Title
	}
	if baseURL != "" {
		resp.ShortURL = baseURL + "/r/" + link.ShortCode
	}
	return resp
}

// RedirectResponse 密码校验通过后的跳转地址
type RedirectResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// PasswordRequiredResponse 需要密码时返回，不暴露目标地址
type PasswordRequiredResponse struct {
	RequiresPassword bool   `json:"requiresPassword"`
	LinkID           string `json:"linkId"`
}
