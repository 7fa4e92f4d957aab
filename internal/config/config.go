package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig            `mapstructure:"server"`   // 服务器配置
	Postgres PostgresConfig          `mapstructure:"postgres"` // PostgreSQL配置
	Ingest   IngestConfig            `mapstructure:"ingest"`   // 摄取调度配置
	Sources  map[string]SourceConfig `mapstructure:"sources"`  // 多来源独立配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// IngestConfig 摄取调度配置
type IngestConfig struct {
	EnabledSources  []string      `mapstructure:"enabled_sources"`   // 启用的来源列表
	WorkerQueueSize int           `mapstructure:"worker_queue_size"` // 单来源任务队列容量
	MaxJobAttempts  int           `mapstructure:"max_job_attempts"`  // 任务最大重试次数
	RateWindow      time.Duration `mapstructure:"rate_window"`       // 单来源任务最小间隔窗口
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`  // 优雅退出等待上限
}

// SourceConfig 单个来源的独立配置
type SourceConfig struct {
	BaseURL             string `mapstructure:"base_url"`              // API基础地址
	Timeout             int    `mapstructure:"timeout"`               // 请求超时（秒）
	RetryCount          int    `mapstructure:"retry_count"`           // 单页请求重试次数
	PageDelayMs         int    `mapstructure:"page_delay_ms"`         // 翻页间隔（毫秒），匹配来源限速
	MaxPages            int    `mapstructure:"max_pages"`             // 默认最大翻页数
	PageSize            int    `mapstructure:"page_size"`             // 单页条数
	PollIntervalMinutes int    `mapstructure:"poll_interval_minutes"` // 轮询间隔（分钟）
	BaseQualityScore    int    `mapstructure:"base_quality_score"`    // 来源基准质量分
	AuthToken           string `mapstructure:"auth_token"`            // 认证Token（部分来源需要）
	Proxy               string `mapstructure:"proxy"`                 // 代理地址
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if n, ok := cfg.Sources["namus"]; ok {
		if v := os.Getenv("NAMUS_AUTH_TOKEN"); v != "" {
			n.AuthToken = v
		}
		cfg.Sources["namus"] = n
	}
	if a, ok := cfg.Sources["amber"]; ok {
		if v := os.Getenv("AMBER_AUTH_TOKEN"); v != "" {
			a.AuthToken = v
		}
		cfg.Sources["amber"] = a
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
}

// applyDefaults 关键调度参数兜底，避免 yaml 漏配导致 worker 不可用
func applyDefaults(cfg *Config) {
	if cfg.Ingest.WorkerQueueSize <= 0 {
		cfg.Ingest.WorkerQueueSize = 16
	}
	if cfg.Ingest.MaxJobAttempts <= 0 {
		cfg.Ingest.MaxJobAttempts = 3
	}
	if cfg.Ingest.RateWindow <= 0 {
		cfg.Ingest.RateWindow = time.Minute
	}
	if cfg.Ingest.ShutdownTimeout <= 0 {
		cfg.Ingest.ShutdownTimeout = 30 * time.Second
	}
}
