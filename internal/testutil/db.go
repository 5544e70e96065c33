// Package testutil 测试用的数据库和 Redis 辅助函数
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomodule/redigo/redis"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"shortlink-go/internal/repository"
)

// NewTestDB 在临时目录创建 sqlite 数据库并迁移。单连接，避免 sqlite 并发写锁冲突
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "shortlink.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewTestRedis 启动 miniredis 并返回连接池
func NewTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Pool) {
	t.Helper()

	mr := miniredis.RunT(t)
	// Close 之后 mr.Addr() 不可用，测试会主动关闭 miniredis 模拟故障
	addr := mr.Addr()
	pool := &redis.Pool{
		MaxIdle: 4,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
	}
	t.Cleanup(func() { _ = pool.Close() })
	return mr, pool
}
