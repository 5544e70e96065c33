package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
	"shortlink-go/constant"
)

// VisitCounter PV/UV 计数（Redis HINCRBY + HyperLogLog），数据以 click_events 为准，这里只是近似统计
type VisitCounter interface {
	RecordVisit(ctx context.Context, linkID, visitor string, at time.Time) error
	DailyPVs(ctx context.Context, date string) (map[string]int64, error)
	DailyUV(ctx context.Context, linkID, date string) (int64, error)
	TotalUV(ctx context.Context, linkID string) (int64, error)
}

type RedisVisitCounter struct {
	pool   *redis.Pool
	logger *zap.Logger
}

func NewRedisVisitCounter(pool *redis.Pool, logger *zap.Logger) *RedisVisitCounter {
	return &RedisVisitCounter{pool: pool, logger: logger.Named("visit_counter")}
}

// RecordVisit 记录每日 PV、每日 UV 和总 UV，三条命令走一次 pipeline
func (v *RedisVisitCounter) RecordVisit(ctx context.Context, linkID, visitor string, at time.Time) error {
	conn, err := v.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer closeConn(conn, v.logger)

	date := constant.GetDateKey(at)
	dailyPvKey := constant.GetDailyPVKey(date)
	dailyUvKey := constant.GetDailyUVKey(linkID, date)
	totalUvKey := constant.GetTotalUVKey(linkID)
	ttl := int64(constant.DailyCounterTTL / time.Second)

	if visitor == "" {
		visitor = "anonymous"
	}

	if err := conn.Send("MULTI"); err != nil {
		return err
	}
	_ = conn.Send("HINCRBY", dailyPvKey, linkID, 1)
	_ = conn.Send("EXPIRE", dailyPvKey, ttl) // 3天过期
	_ = conn.Send("PFADD", dailyUvKey, visitor)
	_ = conn.Send("EXPIRE", dailyUvKey, ttl)
	_ = conn.Send("PFADD", totalUvKey, visitor)
	if _, err := conn.Do("EXEC"); err != nil {
		v.logger.Error("Failed to record visit",
			zap.String("link_id", linkID),
			zap.String("date", date),
			zap.Error(err))
		return err
	}
	return nil
}

// DailyPVs 返回某日所有短链的 PV（link_id -> pv）
func (v *RedisVisitCounter) DailyPVs(ctx context.Context, date string) (map[string]int64, error) {
	conn, err := v.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn, v.logger)

	dailyPvKey := constant.GetDailyPVKey(date)
	values, err := redis.Int64Map(conn.Do("HGETALL", dailyPvKey))
	if err != nil {
		v.logger.Error("Failed to get daily PV",
			zap.String("key", dailyPvKey),
			zap.Error(err))
		return nil, err
	}
	return values, nil
}

// DailyUV 获取某日期短链的独立访客数
func (v *RedisVisitCounter) DailyUV(ctx context.Context, linkID, date string) (int64, error) {
	return v.pfCount(ctx, constant.GetDailyUVKey(linkID, date))
}

// TotalUV 获取短链累计独立访客数
func (v *RedisVisitCounter) TotalUV(ctx context.Context, linkID string) (int64, error) {
	return v.pfCount(ctx, constant.GetTotalUVKey(linkID))
}

func (v *RedisVisitCounter) pfCount(ctx context.Context, key string) (int64, error) {
	conn, err := v.pool.GetContext(ctx)
	if err != nil {
		return 0, err
	}
	defer closeConn(conn, v.logger)

	result, err := redis.Int64(conn.Do("PFCOUNT", key))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, nil
		}
		v.logger.Error("Failed to get UV",
			zap.String("key", key),
			zap.Error(err))
		return 0, err
	}
	return result, nil
}
