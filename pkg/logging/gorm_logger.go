package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold 超过该耗时的 SQL 以 Warn 级别输出
const slowQueryThreshold = 200 * time.Millisecond

type gormZapLogger struct {
	logger *zap.Logger
	level  logger.LogLevel
}

func ToGormLogLevel(zapLevel zapcore.Level) logger.LogLevel {
	switch zapLevel {
	case zapcore.DebugLevel:
		return logger.Info
	case zapcore.InfoLevel, zapcore.WarnLevel:
		return logger.Warn
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return logger.Error
	default:
		return logger.Silent
	}
}

func NewGormLogger(l *zap.Logger, level logger.LogLevel) logger.Interface {
	return &gormZapLogger{
		logger: l.Named("gorm"),
		level:  level,
	}
}

func (g *gormZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormZapLogger{
		logger: g.logger,
		level:  level,
	}
}

func (g *gormZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	// 记录不存在属于正常分支，不按错误输出
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		sql, rows := fc()
		g.logger.Error("GORM SQL failed",
			zap.Duration("duration", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
			zap.Error(err),
		)
	case elapsed > slowQueryThreshold && g.level >= logger.Warn:
		sql, rows := fc()
		g.logger.Warn("GORM slow SQL",
			zap.Duration("duration", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	case g.level >= logger.Info:
		sql, rows := fc()
		g.logger.Debug("GORM SQL",
			zap.Duration("duration", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	}
}
