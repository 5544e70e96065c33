package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/model"
)

// ClickStore 点击事件存储，只追加
type ClickStore interface {
	Create(ctx context.Context, event *model.ClickEvent) error
	ListByLink(ctx context.Context, linkID string, limit int) ([]model.ClickEvent, error)
	CountByLink(ctx context.Context, linkID string) (int64, error)
	CountByAccount(ctx context.Context, accountID string, since time.Time) (int64, error)
}

type GormClickStore struct {
	db *gorm.DB
}

func NewClickStore(db *gorm.DB) *GormClickStore {
	return &GormClickStore{db: db}
}

func (s *GormClickStore) Create(ctx context.Context, event *model.ClickEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperrors.StorageUnavailable(err)
	}
	return nil
}

// ListByLink 按时间倒序返回最多 limit 条，limit <= 0 不限制
func (s *GormClickStore) ListByLink(ctx context.Context, linkID string, limit int) ([]model.ClickEvent, error) {
	var events []model.ClickEvent
	q := s.db.WithContext(ctx).Where("link_id = ?", linkID).
		Order("clicked_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return events, nil
}

func (s *GormClickStore) CountByLink(ctx context.Context, linkID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ClickEvent{}).Where("link_id = ?", linkID).Count(&count).Error
	if err != nil {
		return 0, apperrors.StorageUnavailable(err)
	}
	return count, nil
}

// CountByAccount 统计账户下所有短链的点击事件，since 为零值时不限时间
func (s *GormClickStore) CountByAccount(ctx context.Context, accountID string, since time.Time) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Joins("JOIN links ON links.id = click_events.link_id").
		Where("links.account_id = ?", accountID)
	if !since.IsZero() {
		q = q.Where("click_events.clicked_at >= ?", since.UTC())
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, apperrors.StorageUnavailable(err)
	}
	return count, nil
}
