package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/config"
	"shortlink-go/internal/model"
	"shortlink-go/pkg/logging"
)

// OpenDB 按配置打开数据库并执行迁移，调用方负责在退出时 CloseDB
func OpenDB(cfg config.DBConfig, logger *zap.Logger, atomicLogLevel zap.AtomicLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(logger, logging.ToGormLogLevel(atomicLogLevel.Level())), // 注入 logger 并转换级别
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info("Database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// AutoMigrate 迁移全部表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Link{}, &model.ClickEvent{}, &model.DailyStat{})
}

// CloseDB 关闭底层连接池
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 健康检查
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translateError 把 gorm 错误转换成 AppError
func translateError(err error, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(notFoundMessage).WithCause(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict("error.shortcode_taken").WithCause(err)
	default:
		return apperrors.StorageUnavailable(err)
	}
}
