package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"shortlink-go/internal/config"
	"shortlink-go/internal/dto"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
)

const (
	unknownCountry = "unknown"
	directReferrer = "direct"
	dateLayout     = "2006-01-02"
)

// AnalyticsService 只读聚合，不修改任何数据
type AnalyticsService struct {
	links  repository.LinkStore
	clicks repository.ClickStore
	cfg    config.AnalyticsConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(links repository.LinkStore, clicks repository.ClickStore, cfg config.AnalyticsConfig,
	logger *zap.Logger) *AnalyticsService {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 10000
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 100
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	if cfg.TopLinks <= 0 {
		cfg.TopLinks = 5
	}
	return &AnalyticsService{
		links:  links,
		clicks: clicks,
		cfg:    cfg,
		logger: logger.Named("analytics"),
		now:    time.Now,
	}
}

// PerLinkReport 单个短链的报告。accountID 非空时校验归属
func (s *AnalyticsService) PerLinkReport(ctx context.Context, accountID, linkID string) (*dto.LinkReport, error) {
	if _, err := ownedLink(ctx, s.links, accountID, linkID); err != nil {
		return nil, err
	}

	total, err := s.clicks.CountByLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	// 按时间倒序，分布只统计最近 max_events 条
	events, err := s.clicks.ListByLink(ctx, linkID, s.cfg.MaxEvents)
	if err != nil {
		return nil, err
	}
	if int64(len(events)) < total {
		s.logger.Debug("Histogram truncated",
			zap.String("link_id", linkID),
			zap.Int64("total", total),
			zap.Int("used", len(events)))
	}

	report := &dto.LinkReport{
		LinkID:      linkID,
		TotalClicks: total,
		Devices:     map[string]int64{},
		Browsers:    map[string]int64{},
		OS:          map[string]int64{},
		Countries:   map[string]int64{},
		Referrers:   map[string]int64{},
	}

	today := dayStart(s.now())
	first := today.AddDate(0, 0, -(s.cfg.WindowDays - 1))
	daily := make(map[string]int64, s.cfg.WindowDays)

	for i := range events {
		e := &events[i]
		report.Devices[orUnknown(e.DeviceType)]++
		report.Browsers[orUnknown(e.Browser)]++
		report.OS[orUnknown(e.OS)]++
		report.Countries[valueOr(e.Country, unknownCountry)]++
		report.Referrers[valueOr(e.Referrer, directReferrer)]++

		ts := e.Timestamp.UTC()
		if !ts.Before(first) {
			daily[ts.Format(dateLayout)]++
		}
	}

	report.DailyClicks = make([]dto.DailyClicks, 0, s.cfg.WindowDays)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		report.DailyClicks = append(report.DailyClicks, dto.DailyClicks{Date: key, Clicks: daily[key]})
	}

	recent := len(events)
	if recent > s.cfg.RecentLimit {
		recent = s.cfg.RecentLimit
	}
	report.RecentClicks = events[:recent:recent]

	return report, nil
}

// AccountOverview 账户下所有短链的汇总
func (s *AnalyticsService) AccountOverview(ctx context.Context, accountID string) (*dto.AccountOverview, error) {
	links, total, err := s.links.ListByAccount(ctx, accountID, 0, 0)
	if err != nil {
		return nil, err
	}

	totalClicks, err := s.clicks.CountByAccount(ctx, accountID, time.Time{})
	if err != nil {
		return nil, err
	}
	todayClicks, err := s.clicks.CountByAccount(ctx, accountID, dayStart(s.now()))
	if err != nil {
		return nil, err
	}

	overview := &dto.AccountOverview{
		TotalLinks:  total,
		TotalClicks: totalClicks,
		TodayClicks: todayClicks,
	}
	for i := range links {
		if links[i].IsActive {
			overview.ActiveLinks++
		}
	}

	sort.SliceStable(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.ClickCount != b.ClickCount {
			return a.ClickCount > b.ClickCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	n := len(links)
	if n > s.cfg.TopLinks {
		n = s.cfg.TopLinks
	}
	overview.TopLinks = make([]dto.TopLink, 0, n)
	for _, l := range links[:n] {
		top := dto.TopLink{ID: l.ID, ShortCode: l.ShortCode, ClickCount: l.ClickCount}
		if l.Title != nil {
			top.Title = *l.Title
		}
		overview.TopLinks = append(overview.TopLinks, top)
	}
	return overview, nil
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func orUnknown(v string) string {
	if v == "" {
		return model.Unknown
	}
	return v
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
