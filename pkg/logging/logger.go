package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"shortlink-go/internal/config"
)

var (
	Logger      = zap.NewNop()         // 全局 Logger 实例
	AtomicLevel = zap.NewAtomicLevel() // 全局共享日志级别
)

// InitLogger 根据配置创建 Logger（控制台 + lumberjack 文件），并替换全局 Logger
func InitLogger(cfg config.LogConfig) (*zap.Logger, error) {
	// 设置默认值
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Path == "" {
		cfg.Path = "logs/shortlink.log"
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10 // MB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 7 // 天
	}

	// 解析日志级别（安全处理无效值）
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zap.InfoLevel
	}
	AtomicLevel = zap.NewAtomicLevelAt(level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(time.RFC3339Nano))
		},
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(os.Stdout), AtomicLevel),
	}

	// 文件输出（使用 lumberjack），确保日志目录存在
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,    // 单位：MB
		MaxBackups: cfg.MaxBackups, // 保留多少个备份文件
		MaxAge:     cfg.MaxAge,     // 保留多少天
		Compress:   cfg.Compress,
		LocalTime:  false,
	}
	cores = append(cores, zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(lumberjackLogger),
		AtomicLevel,
	))

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(Logger)

	Logger.Info("InitLogger finished", zap.String("level", level.String()), zap.String("path", cfg.Path))
	return Logger, nil
}
