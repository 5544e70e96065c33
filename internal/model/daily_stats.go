package model

type DailyStat struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	LinkID string `gorm:"size:36;not null;uniqueIndex:idx_daily_link_date,priority:1" json:"linkId"`
	Date   string `gorm:"size:10;not null;uniqueIndex:idx_daily_link_date,priority:2" json:"date"` // YYYY-MM-DD
	PV     int64  `gorm:"default:0" json:"pv"`
	UV     int64  `gorm:"default:0" json:"uv"`
}
