package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shortlink-go/pkg/uaparser"
)

// 设备类型，取值由 uaparser 定义
const (
	DeviceMobile  = uaparser.DeviceMobile
	DeviceTablet  = uaparser.DeviceTablet
	DeviceDesktop = uaparser.DeviceDesktop
	Unknown       = uaparser.Unknown
)

// ClickEvent 一次成功访问的事实记录，写入后不再修改
type ClickEvent struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	LinkID     string    `gorm:"size:36;not null;index:idx_click_link_time,priority:1" json:"linkId"`
	Timestamp  time.Time `gorm:"column:clicked_at;not null;index:idx_click_link_time,priority:2" json:"timestamp"`
	IPAddress  *string   `gorm:"size:64" json:"ipAddress,omitempty"`
	UserAgent  *string   `gorm:"size:500" json:"userAgent,omitempty"`
	DeviceType string    `gorm:"size:16;not null" json:"deviceType"`
	Browser    string    `gorm:"size:64;not null" json:"browser"`
	OS         string    `gorm:"size:64;not null" json:"os"`
	Country    *string   `gorm:"size:64" json:"country,omitempty"`
	City       *string   `gorm:"size:128" json:"city,omitempty"`
	Referrer   *string   `gorm:"size:500" json:"referrer,omitempty"`
}

func (e *ClickEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.UTC()
	return nil
}

// BeforeUpdate 点击事件不可变
func (e *ClickEvent) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}
