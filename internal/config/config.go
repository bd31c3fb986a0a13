package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Engine    EngineConfig    `mapstructure:"engine"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// EngineConfig 游戏化引擎参数
type EngineConfig struct {
	// 身份解析时为无域名的标识符补全的默认邮箱域名
	DefaultEmailDomain string `mapstructure:"default_email_domain"`
	// 连续打卡计算时回看的最近事件数量
	StreakEventWindow int `mapstructure:"streak_event_window"`
	// 异步重算队列容量
	RecomputeQueueSize int `mapstructure:"recompute_queue_size"`
	// 连续打卡摘要的Redis缓存时长（秒）
	StreakCacheTTL time.Duration `mapstructure:"streak_cache_ttl_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("STUDYBUDDY")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Engine
	viper.BindEnv("engine.default_email_domain", "ENGINE_DEFAULT_EMAIL_DOMAIN")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Engine.StreakCacheTTL = cfg.Engine.StreakCacheTTL * time.Second

	applyEngineDefaults(&cfg.Engine)

	if cfg.Server.Mode == "release" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password must be set in release mode")
	}

	return &cfg, nil
}

func applyEngineDefaults(e *EngineConfig) {
	if e.DefaultEmailDomain == "" {
		e.DefaultEmailDomain = "gmail.com"
	}
	if e.StreakEventWindow <= 0 {
		e.StreakEventWindow = 30
	}
	if e.RecomputeQueueSize <= 0 {
		e.RecomputeQueueSize = 256
	}
	if e.StreakCacheTTL <= 0 {
		e.StreakCacheTTL = 60 * time.Second
	}
}
