// Package config loads service settings from .env files, an optional
// config.yaml and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env            string
	Addr           string
	TLSCertFile    string
	TLSKeyFile     string
	MaxBodySize    int64
	StrictSecurity bool
	AllowedOrigins []string

	Database  Database
	Redis     Redis
	RateLimit RateLimit
	Storage   Storage
	Log       Log
}

type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	MigrateOnStart  bool
}

type Redis struct {
	URL      string // full redis:// or rediss:// URL; takes precedence
	Addr     string
	User     string
	Password string
	TLS      bool
}

// Enabled reports whether any Redis connection settings were given.
func (r Redis) Enabled() bool { return r.URL != "" || r.Addr != "" }

// RateLimit budgets reads and writes separately.
type RateLimit struct {
	TokensPerSecond      float64
	Burst                int
	WriteTokensPerSecond float64
	WriteBurst           int
	WindowLimit          int
	WriteWindowLimit     int
	Window               time.Duration
}

type Storage struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
	UsePathStyle    bool
}

// Enabled reports whether object storage is configured.
func (s Storage) Enabled() bool { return s.Bucket != "" }

type Log struct {
	Level  string
	Format string
}

func (c Config) TLSEnabled() bool { return c.TLSCertFile != "" && c.TLSKeyFile != "" }

func (c Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_ADDR", ":3000")
	v.SetDefault("MAX_BODY_SIZE", 10*1024*1024)
	v.SetDefault("STRICT_SECURITY", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")

	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_PING_TIMEOUT", "3s")
	v.SetDefault("DB_MIGRATE", true)

	v.SetDefault("REDIS_TLS", true)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WRITE_RPS", 1)
	v.SetDefault("RATE_LIMIT_WRITE_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_LIMIT", 3000)
	v.SetDefault("RATE_LIMIT_WRITE_WINDOW_LIMIT", 600)
	v.SetDefault("RATE_LIMIT_WINDOW", "60m")

	v.SetDefault("AWS_PRESIGN_TTL", "15m")
	v.SetDefault("AWS_USE_PATH_STYLE", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads dotenv files (missing files are ignored), then config.yaml from
// configPath if present, then the environment.
func Load(configPath string, dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	defaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
	}

	cfg := Config{
		Env:            v.GetString("APP_ENV"),
		Addr:           v.GetString("APP_ADDR"),
		TLSCertFile:    v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:     v.GetString("TLS_KEY_FILE"),
		MaxBodySize:    v.GetInt64("MAX_BODY_SIZE"),
		StrictSecurity: v.GetBool("STRICT_SECURITY"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Database: Database{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			PingTimeout:     v.GetDuration("DB_PING_TIMEOUT"),
			MigrateOnStart:  v.GetBool("DB_MIGRATE"),
		},
		Redis: Redis{
			URL:      v.GetString("UPSTASH_REDIS_URL"),
			Addr:     v.GetString("REDIS_ADDR"),
			User:     v.GetString("REDIS_USER"),
			Password: v.GetString("REDIS_PASSWORD"),
			TLS:      v.GetBool("REDIS_TLS"),
		},
		RateLimit: RateLimit{
			TokensPerSecond:      v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:                v.GetInt("RATE_LIMIT_BURST"),
			WriteTokensPerSecond: v.GetFloat64("RATE_LIMIT_WRITE_RPS"),
			WriteBurst:           v.GetInt("RATE_LIMIT_WRITE_BURST"),
			WindowLimit:          v.GetInt("RATE_LIMIT_WINDOW_LIMIT"),
			WriteWindowLimit:     v.GetInt("RATE_LIMIT_WRITE_WINDOW_LIMIT"),
			Window:               v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Storage: Storage{
			Endpoint:        v.GetString("AWS_ENDPOINT"),
			Region:          v.GetString("AWS_REGION"),
			Bucket:          v.GetString("AWS_BUCKET"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			PresignTTL:      v.GetDuration("AWS_PRESIGN_TTL"),
			UsePathStyle:    v.GetBool("AWS_USE_PATH_STYLE"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate fails fast on settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must be positive"))
	}
	if c.Database.PingTimeout <= 0 {
		errs = append(errs, errors.New("DB_PING_TIMEOUT must be a positive duration"))
	}
	if c.Redis.Enabled() {
		if c.RateLimit.TokensPerSecond <= 0 || c.RateLimit.Burst < 1 {
			errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
		}
		if c.RateLimit.WriteTokensPerSecond <= 0 || c.RateLimit.WriteBurst < 1 {
			errs = append(errs, errors.New("RATE_LIMIT_WRITE_RPS and RATE_LIMIT_WRITE_BURST must be positive"))
		}
		if c.RateLimit.WindowLimit < 1 || c.RateLimit.WriteWindowLimit < 1 || c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WINDOW_LIMIT, RATE_LIMIT_WRITE_WINDOW_LIMIT and RATE_LIMIT_WINDOW must be positive"))
		}
	}
	if c.Storage.Enabled() && c.Storage.PresignTTL <= 0 {
		errs = append(errs, errors.New("AWS_PRESIGN_TTL must be a positive duration"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
