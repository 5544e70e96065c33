package repository

import (
	"context"

	"gorm.io/gorm"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/model"
)

// LinkStore 短链存储
type LinkStore interface {
	Create(ctx context.Context, link *model.Link) error
	GetByID(ctx context.Context, id string) (*model.Link, error)
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	IncrementClickCount(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string, page, size int) ([]model.Link, int64, error)
}

// GormLinkStore 基于 gorm 的 LinkStore
type GormLinkStore struct {
	db *gorm.DB
}

func NewLinkStore(db *gorm.DB) *GormLinkStore {
	return &GormLinkStore{db: db}
}

// Create 插入短链，short_code 唯一索引冲突时返回 Conflict。插入不会出现 RecordNotFound
func (s *GormLinkStore) Create(ctx context.Context, link *model.Link) error {
	return translateError(s.db.WithContext(ctx).Create(link).Error, "")
}

func (s *GormLinkStore) GetByID(ctx context.Context, id string) (*model.Link, error) {
	var link model.Link
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, translateError(err, "error.link_not_found")
	}
	return &link, nil
}

func (s *GormLinkStore) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := s.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error; err != nil {
		return nil, translateError(err, "error.link_not_found")
	}
	return &link, nil
}

// ExistsByCode 检查短码是否已存在
func (s *GormLinkStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Link{}).Where("short_code = ?", code).Count(&count).Error
	if err != nil {
		return false, apperrors.StorageUnavailable(err)
	}
	return count > 0, nil
}

// Update 更新指定列，map 中的 nil 会被写成 NULL
func (s *GormLinkStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&model.Link{}).Where("id = ?", id).Updates(fields).Error
	return translateError(err, "error.link_not_found")
}

// Delete 在一个事务里删除短链及其点击事件、每日统计
func (s *GormLinkStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.Link{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("link_id = ?", id).Delete(&model.ClickEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("link_id = ?", id).Delete(&model.DailyStat{}).Error
	})
	return translateError(err, "error.link_not_found")
}

// IncrementClickCount 原子递增点击数，由数据库完成 click_count = click_count + 1
func (s *GormLinkStore) IncrementClickCount(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&model.Link{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if result.Error != nil {
		return apperrors.StorageUnavailable(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("error.link_not_found")
	}
	return nil
}

// ListByAccount 按创建时间倒序列出账户的短链，size <= 0 时返回全部
func (s *GormLinkStore) ListByAccount(ctx context.Context, accountID string, page, size int) ([]model.Link, int64, error) {
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Link{}).Where("account_id = ?", accountID)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, apperrors.StorageUnavailable(err)
	}
	if total == 0 {
		return []model.Link{}, 0, nil
	}

	var links []model.Link
	q := query().Order("created_at DESC").Order("id ASC")
	if size > 0 {
		if page < 1 {
			page = 1
		}
		q = q.Limit(size).Offset((page - 1) * size)
	}
	if err := q.Find(&links).Error; err != nil {
		return nil, 0, apperrors.StorageUnavailable(err)
	}
	return links, total, nil
}
