package repository

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
	"shortlink-go/internal/config"
)

// NewRedisPool 创建 Redis 连接池，调用方负责 Close
func NewRedisPool(cfg config.RedisConfig, logger *zap.Logger) *redis.Pool {
	addr := cfg.Addr
	password := cfg.Password
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 10
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 240 * time.Second
	}

	return &redis.Pool{
		MaxIdle:     maxIdle,
		IdleTimeout: idleTimeout,
		Dial: func() (redis.Conn, error) {
			conn, err := redis.Dial("tcp", addr,
				redis.DialConnectTimeout(2*time.Second),
				redis.DialReadTimeout(time.Second),
				redis.DialWriteTimeout(time.Second),
			)
			if err != nil {
				logger.Error("Failed to connect Redis",
					zap.String("addr", addr),
					zap.Error(err),
				)
				return nil, err
			}

			// 如果设置了密码，执行 AUTH
			if password != "" {
				if _, authErr := conn.Do("AUTH", password); authErr != nil {
					if closeErr := conn.Close(); closeErr != nil {
						logger.Error("Failed to close redis connection after AUTH failure",
							zap.String("addr", addr),
							zap.Error(closeErr),
						)
					}
					logger.Error("Redis AUTH failed",
						zap.String("addr", addr),
						zap.Error(authErr),
					)
					return nil, authErr
				}
			}

			logger.Debug("Redis connection established",
				zap.String("addr", addr),
				zap.Bool("auth", password != ""),
			)
			return conn, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) > time.Minute {
				_, err := c.Do("PING")
				if err != nil {
					logger.Warn("Redis connection health check failed",
						zap.String("addr", addr),
						zap.Error(err),
					)
				}
				return err
			}
			return nil
		},
	}
}

// closeConn 归还连接，失败只记录日志
func closeConn(conn redis.Conn, logger *zap.Logger) {
	if err := conn.Close(); err != nil {
		logger.Error("Failed to close Redis connection",
			zap.Error(err),
			zap.String("operation", "close"),
			zap.String("connection_type", "redis"),
		)
	}
}
