package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"shortlink-go/constant"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/model"
	"shortlink-go/internal/repository"
)

// StatsService 把 Redis 中的 PV/UV 计数同步到 daily_stats
type StatsService struct {
	links  repository.LinkStore
	stats  repository.DailyStatStore
	visits repository.VisitCounter
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService visits 为 nil 时同步是空操作
func NewStatsService(links repository.LinkStore, stats repository.DailyStatStore, visits repository.VisitCounter,
	logger *zap.Logger) *StatsService {
	return &StatsService{
		links:  links,
		stats:  stats,
		visits: visits,
		logger: logger.Named("stats"),
		now:    time.Now,
	}
}

// SyncDaily 同步昨天和今天的计数，昨天的计数在跨天后可能还有尾部写入。返回同步的记录数
func (s *StatsService) SyncDaily(ctx context.Context) (int, error) {
	if s.visits == nil {
		return 0, nil
	}

	today := s.now().UTC()
	synced := 0
	touched := map[string]struct{}{}
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		n, err := s.syncDay(ctx, day, touched)
		synced += n
		if err != nil {
			return synced, err
		}
	}

	for linkID := range touched {
		total, err := s.visits.TotalUV(ctx, linkID)
		if err != nil {
			s.logger.Warn("Failed to read total UV", zap.String("link_id", linkID), zap.Error(err))
			continue
		}
		if err := s.stats.UpdateTotalUV(ctx, linkID, total); err != nil {
			s.logger.Warn("Failed to write total UV", zap.String("link_id", linkID), zap.Error(err))
		}
	}

	s.logger.Info("Daily stats synced", zap.Int("records", synced), zap.Int("links", len(touched)))
	return synced, nil
}

func (s *StatsService) syncDay(ctx context.Context, day time.Time, touched map[string]struct{}) (int, error) {
	pvs, err := s.visits.DailyPVs(ctx, constant.GetDateKey(day))
	if err != nil {
		return 0, err
	}

	date := day.Format(dateLayout)
	synced := 0
	for linkID, pv := range pvs {
		// 短链可能已被删除，计数键还没过期
		if _, err := s.links.GetByID(ctx, linkID); err != nil {
			if apperrors.IsCode(err, http.StatusNotFound) {
				continue
			}
			return synced, err
		}

		uv, err := s.visits.DailyUV(ctx, linkID, constant.GetDateKey(day))
		if err != nil {
			s.logger.Warn("Failed to read daily UV", zap.String("link_id", linkID), zap.Error(err))
		}

		if err := s.stats.Upsert(ctx, &model.DailyStat{LinkID: linkID, Date: date, PV: pv, UV: uv}); err != nil {
			return synced, err
		}
		touched[linkID] = struct{}{}
		synced++
	}
	return synced, nil
}

// DailyStats 返回账户短链的每日 PV/UV 快照，按日期倒序
func (s *StatsService) DailyStats(ctx context.Context, accountID, linkID string) ([]model.DailyStat, error) {
	if _, err := ownedLink(ctx, s.links, accountID, linkID); err != nil {
		return nil, err
	}
	return s.stats.ListByLink(ctx, linkID)
}
