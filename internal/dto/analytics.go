package dto

import "shortlink-go/internal/model"

// DailyClicks 某天（UTC，YYYY-MM-DD）的点击数
type DailyClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// LinkReport 单个短链的分析报告
type LinkReport struct {
	LinkID       string             `json:"linkId"`
	TotalClicks  int64              `json:"totalClicks"`
	Devices      map[string]int64   `json:"devices"`
	Browsers     map[string]int64   `json:"browsers"`
	OS           map[string]int64   `json:"os"`
	Countries    map[string]int64   `json:"countries"`
	Referrers    map[string]int64   `json:"referrers"`
	DailyClicks  []DailyClicks      `json:"dailyClicks"`
	RecentClicks []model.ClickEvent `json:"recentClicks"`
}

// TopLink 概览中的热门短链
type TopLink struct {
	ID         string `json:"id"`
	ShortCode  string `json:"shortCode"`
	Title      string `json:"title,omitempty"`
	ClickCount int64  `json:"clickCount"`
}

// AccountOverview 账户维度的概览
type AccountOverview struct {
	TotalLinks  int64     `json:"totalLinks"`
	ActiveLinks int64     `json:"activeLinks"`
	TotalClicks int64     `json:"totalClicks"`
	TodayClicks int64     `json:"todayClicks"`
	TopLinks    []TopLink `json:"topLinks"`
}
