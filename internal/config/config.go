package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	ShortCode ShortCodeConfig `mapstructure:"shortcode"`
	Password  PasswordConfig  `mapstructure:"password"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Stats     StatsConfig     `mapstructure:"stats"`
	I18n      I18nConfig      `mapstructure:"i18n"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Addr             string        `mapstructure:"addr"`
	Password         string        `mapstructure:"password"`
	MaxIdle          int           `mapstructure:"max_idle"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	LinkCacheTTL     time.Duration `mapstructure:"link_cache_ttl"`
	NegativeCacheTTL time.Duration `mapstructure:"negative_cache_ttl"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type ShortCodeConfig struct {
	Length     int      `mapstructure:"length"`
	MaxRetries int      `mapstructure:"max_retries"`
	Reserved   []string `mapstructure:"reserved"`
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type AnalyticsConfig struct {
	MaxEvents   int `mapstructure:"max_events"`
	RecentLimit int `mapstructure:"recent_limit"`
	WindowDays  int `mapstructure:"window_days"`
	TopLinks    int `mapstructure:"top_links"`
}

type GeoConfig struct {
	CountryHeader string `mapstructure:"country_header"`
	CityHeader    string `mapstructure:"city_header"`
}

type StatsConfig struct {
	SyncSpec string `mapstructure:"sync_spec"`
}

type I18nConfig struct {
	Files       []string `mapstructure:"files"`
	DefaultLang string   `mapstructure:"default_lang"`
}

// SetDefaults 注册默认值，配置文件和环境变量可以覆盖
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.max_open_conns", 50)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.max_idle", 10)
	v.SetDefault("redis.idle_timeout", 240*time.Second)
	v.SetDefault("redis.link_cache_ttl", time.Hour)
	v.SetDefault("redis.negative_cache_ttl", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/shortlink.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 7)

	v.SetDefault("shortcode.length", 6)
	v.SetDefault("shortcode.max_retries", 100)
	v.SetDefault("shortcode.reserved", []string{"api", "health", "metrics"})

	v.SetDefault("password.bcrypt_cost", bcrypt.DefaultCost)

	v.SetDefault("analytics.max_events", 10000)
	v.SetDefault("analytics.recent_limit", 100)
	v.SetDefault("analytics.window_days", 30)
	v.SetDefault("analytics.top_links", 5)

	v.SetDefault("geo.country_header", "CF-IPCountry")
	v.SetDefault("geo.city_header", "CF-IPCity")

	v.SetDefault("stats.sync_spec", "*/10 * * * *")

	v.SetDefault("i18n.files", []string{"./i18n/en.toml", "./i18n/zh.toml"})
	v.SetDefault("i18n.default_lang", "en")
}

// Load 读取配置文件。path 为空时依次尝试 SHORTLINK_CONFIG 和 ./config.yaml
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path == "" {
		path = os.Getenv("SHORTLINK_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SHORTLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ErrMissingJWTSecret 空密钥会让任何人都能签发有效 token
var ErrMissingJWTSecret = errors.New("auth.jwt_secret must be set")

// Validate 检查启动必需的配置项
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
