package constant

import (
	"fmt"
	"time"
)

// 常量定义
const (
	BasePrefix = "redirect:"
	Separator  = ":"

	// MissingMarker 负缓存占位值，防止缓存穿透
	MissingMarker = ""
)

// Redis 键模板
const (
	ShortCode = BasePrefix + "shortcode:%s"
	DailyPV   = BasePrefix + "pv" + Separator + "%s"                    // redirect:pv:yyyyMMdd (hash: link_id -> pv)
	DailyUV   = BasePrefix + "uv" + Separator + "%s" + Separator + "%s" // redirect:uv:yyyyMMdd:link_id
	TotalUV   = BasePrefix + "total_uv" + Separator + "%s"              // redirect:total_uv:link_id
)

// DailyCounterTTL 每日计数键的保留时间
const DailyCounterTTL = 3 * 24 * time.Hour

// GetShortCodeKey 生成 shortCode 缓存 key
func GetShortCodeKey(shortcode string) string {
	return fmt.Sprintf(ShortCode, shortcode)
}

// GetDateKey 生成指定时间（UTC）的日期键（格式：yyyyMMdd）
func GetDateKey(t time.Time) string {
	return t.UTC().Format("20060102")
}

// GetDailyPVKey 生成每日 PV 键（格式：redirect:pv:yyyyMMdd）
func GetDailyPVKey(date string) string {
	return fmt.Sprintf(DailyPV, date)
}

// GetDailyUVKey 生成每日 UV 键（格式：redirect:uv:yyyyMMdd:link_id）
func GetDailyUVKey(linkID, date string) string {
	return fmt.Sprintf(DailyUV, date, linkID)
}

// GetTotalUVKey 生成总 UV 键（格式：redirect:total_uv:link_id）
func GetTotalUVKey(linkID string) string {
	return fmt.Sprintf(TotalUV, linkID)
}
