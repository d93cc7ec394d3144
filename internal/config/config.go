package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port                  int    `mapstructure:"port"`
	LoginRateLimitPerHour int    `mapstructure:"login_rate_limit_per_hour"`
	CookieDomain          string `mapstructure:"cookie_domain"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Name        string `mapstructure:"name"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr 返回 host:port 形式的地址。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SessionConfig 描述会话存储与 Cookie 签名。
// Store 为 "redis" 或 "memory"（仅用于本地开发）。
type SessionConfig struct {
	Store      string        `mapstructure:"store"`
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secure     bool          `mapstructure:"secure"`
}

// PDFConfig 控制无头浏览器的渲染参数。
type PDFConfig struct {
	ChromeBin     string        `mapstructure:"chrome_bin"`
	RenderTimeout time.Duration `mapstructure:"render_timeout"`
}

// ArchiveConfig toggles the asynchronous PDF archive pipeline.
type ArchiveConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	MaxRetry int  `mapstructure:"max_retry"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// WorkerConfig contains asynq worker settings.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LogConfig 选择 slog 的输出格式与级别。
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// TracingConfig contains OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Exporter     string `mapstructure:"exporter"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from environment variables (with optional defaults).
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.login_rate_limit_per_hour", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumedesk")
	v.SetDefault("database.user", "resumedesk")
	v.SetDefault("database.password", "resumedesk")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("session.store", "redis")
	v.SetDefault("session.cookie_name", "resumedesk_session")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.secure", false)
	v.SetDefault("pdf.render_timeout", 30*time.Second)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.max_retry", 5)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.service_name", "resumedesk")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                      "API_PORT",
		"api.login_rate_limit_per_hour": "LOGIN_RATE_LIMIT_PER_HOUR",
		"api.cookie_domain":             "COOKIE_DOMAIN",
		"database.host":                 "DATABASE_HOST",
		"database.port":                 "DATABASE_PORT",
		"database.name":                 "POSTGRES_DB",
		"database.user":                 "POSTGRES_USER",
		"database.password":             "POSTGRES_PASSWORD",
		"database.sslmode":              "DATABASE_SSLMODE",
		"database.auto_migrate":         "DATABASE_AUTO_MIGRATE",
		"redis.host":                    "REDIS_HOST",
		"redis.port":                    "REDIS_PORT",
		"session.store":                 "SESSION_STORE",
		"session.secret":                "SESSION_SECRET",
		"session.cookie_name":           "SESSION_COOKIE_NAME",
		"session.ttl":                   "SESSION_TTL",
		"session.secure":                "SESSION_SECURE_COOKIE",
		"pdf.chrome_bin":                "CHROME_BIN",
		"pdf.render_timeout":            "PDF_RENDER_TIMEOUT",
		"archive.enabled":               "ARCHIVE_ENABLED",
		"archive.max_retry":             "ARCHIVE_MAX_RETRY",
		"minio.endpoint":                "MINIO_ENDPOINT",
		"minio.public_endpoint":         "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":           "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":       "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                 "MINIO_USE_SSL",
		"minio.bucket":                  "MINIO_BUCKET",
		"minio.region":                  "MINIO_REGION",
		"minio.auto_create_bucket":      "MINIO_AUTO_CREATE_BUCKET",
		"worker.concurrency":            "WORKER_CONCURRENCY",
		"log.format":                    "LOG_FORMAT",
		"log.level":                     "LOG_LEVEL",
		"tracing.enabled":               "TRACING_ENABLED",
		"tracing.exporter":              "TRACING_EXPORTER",
		"tracing.otlp_endpoint":         "OTEL_EXPORTER_OTLP_ENDPOINT",
		"tracing.service_name":          "OTEL_SERVICE_NAME",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}

	switch strings.ToLower(cfg.Session.Store) {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported session store %q", cfg.Session.Store)
	}
	if len(cfg.Session.Secret) < 32 {
		return errors.New("session secret must be at least 32 bytes")
	}
	if cfg.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if cfg.Session.CookieName == "" {
		return errors.New("session cookie name is required")
	}
	if cfg.PDF.RenderTimeout <= 0 {
		return errors.New("pdf render timeout must be positive")
	}

	if cfg.UsesRedis() {
		if cfg.Redis.Host == "" {
			return errors.New("redis host is required")
		}
		if cfg.Redis.Port <= 0 {
			return errors.New("redis port must be positive")
		}
	}

	if cfg.Archive.Enabled {
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
		if cfg.Worker.Concurrency <= 0 {
			return errors.New("worker concurrency must be positive")
		}
	}

	if cfg.Tracing.Enabled {
		switch strings.ToLower(cfg.Tracing.Exporter) {
		case "stdout":
		case "otlp":
			if cfg.Tracing.OTLPEndpoint == "" {
				return errors.New("otlp endpoint is required for the otlp exporter")
			}
		default:
			return fmt.Errorf("unsupported tracing exporter %q", cfg.Tracing.Exporter)
		}
	}
	return nil
}

// UsesRedis reports whether any enabled component needs a Redis connection.
func (c Config) UsesRedis() bool {
	return strings.EqualFold(c.Session.Store, "redis") || c.Archive.Enabled
}
