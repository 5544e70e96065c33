package repository

import (
	"context"

	"gorm.io/gorm"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/model"
)

// DailyStatStore 每日 PV/UV 快照
type DailyStatStore interface {
	Upsert(ctx context.Context, stat *model.DailyStat) error
	ListByLink(ctx context.Context, linkID string) ([]model.DailyStat, error)
	UpdateTotalUV(ctx context.Context, linkID string, totalUV int64) error
}

type GormDailyStatStore struct {
	db *gorm.DB
}

func NewDailyStatStore(db *gorm.DB) *GormDailyStatStore {
	return &GormDailyStatStore{db: db}
}

// Upsert 按 (link_id, date) 插入或覆盖 pv/uv
func (s *GormDailyStatStore) Upsert(ctx context.Context, stat *model.DailyStat) error {
	err := s.db.WithContext(ctx).
		Where("link_id = ? AND date = ?", stat.LinkID, stat.Date).
		Assign(map[string]interface{}{"pv": stat.PV, "uv": stat.UV}).
		FirstOrCreate(stat).Error
	if err != nil {
		return apperrors.StorageUnavailable(err)
	}
	return nil
}

// ListByLink 按日期倒序
func (s *GormDailyStatStore) ListByLink(ctx context.Context, linkID string) ([]model.DailyStat, error) {
	var stats []model.DailyStat
	err := s.db.WithContext(ctx).Where("link_id = ?", linkID).Order("date DESC").Find(&stats).Error
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return stats, nil
}

// UpdateTotalUV 回写短链的累计 UV
func (s *GormDailyStatStore) UpdateTotalUV(ctx context.Context, linkID string, totalUV int64) error {
	err := s.db.WithContext(ctx).Model(&model.Link{}).
		Where("id = ?", linkID).
		UpdateColumn("total_uv", totalUV).Error
	if err != nil {
		return apperrors.StorageUnavailable(err)
	}
	return nil
}
