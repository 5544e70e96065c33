package model

import "time"

// Link 短链记录
type Link struct {
	BaseModel
	AccountID      string     `gorm:"size:64;not null;index" json:"accountId"`
	DestinationURL string     `gorm:"size:2048;not null" json:"destinationUrl"`
	ShortCode      string     `gorm:"uniqueIndex;size:32;not null" json:"shortCode"`
	Title          *string    `gorm:"size:255" json:"title,omitempty"`
	PasswordHash   *string    `gorm:"size:255" json:"-"`
	ExpiresAt      *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	IsActive       bool       `gorm:"not null" json:"isActive"`
	ClickCount     int64      `gorm:"not null;default:0" json:"clickCount"`
	TotalUV        int64      `gorm:"not null;default:0" json:"totalUv"`
}

// HasPassword 是否设置了访问密码
func (l *Link) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// IsExpired 过期时间严格早于 now 时视为过期，未设置过期时间永不过期
func (l *Link) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return l.ExpiresAt.UTC().Before(now.UTC())
}
