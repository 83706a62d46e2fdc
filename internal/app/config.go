package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/hookbrief-backend/internal/data/db"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief"
	"github.com/yungbote/hookbrief-backend/internal/observability"
	"github.com/yungbote/hookbrief-backend/internal/platform/cache"
	"github.com/yungbote/hookbrief-backend/internal/platform/dedup"
	"github.com/yungbote/hookbrief-backend/internal/platform/envutil"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

// Duration accepts "5s" style strings or integer nanoseconds.
type Duration = llm.Duration

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	WriteTimeout      Duration `yaml:"write_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

type DBConfig struct {
	Driver        string   `yaml:"driver"`
	DSN           string   `yaml:"dsn"`
	SlowThreshold Duration `yaml:"slow_threshold"`
	AutoMigrate   bool     `yaml:"auto_migrate"`
}

type CacheConfig struct {
	// SignalTTL of 0 disables signal caching.
	SignalTTL  Duration `yaml:"signal_ttl"`
	MaxEntries int      `yaml:"max_entries"`
}

type BriefConfig struct {
	ProviderTimeout    Duration `yaml:"provider_timeout"`
	AuditTimeout       Duration `yaml:"audit_timeout"`
	MaxSpokenHooks     int      `yaml:"max_spoken_hooks"`
	MaxOptions         int      `yaml:"max_options"`
	RecentHooksLimit   int      `yaml:"recent_hooks_limit"`
	ExemplarLimit      int      `yaml:"exemplar_limit"`
	SignalLimit        int      `yaml:"signal_limit"`
	IncludeDiagnostics bool     `yaml:"include_diagnostics"`
}

type DedupConfig struct {
	WorkTimeout Duration `yaml:"work_timeout"`
	MaxWaiters  int      `yaml:"max_waiters"`
}

type LogConfig struct {
	Mode     string `yaml:"mode"`
	Redact   bool   `yaml:"redact"`
	HashSalt string `yaml:"hash_salt"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Env         string `yaml:"env"`
	ServiceName string `yaml:"service_name"`

	HTTP    HTTPConfig                  `yaml:"http"`
	DB      DBConfig                    `yaml:"db"`
	Redis   cache.RedisConfig           `yaml:"redis"`
	Cache   CacheConfig                 `yaml:"cache"`
	LLM     llm.Config                  `yaml:"llm"`
	Brief   BriefConfig                 `yaml:"brief"`
	Dedup   DedupConfig                 `yaml:"dedup"`
	OTel    observability.TracingConfig `yaml:"otel"`
	Metrics MetricsConfig               `yaml:"metrics"`
	Log     LogConfig                   `yaml:"log"`
}

func defaultConfig() *Config {
	b := brief.DefaultConfig()
	d := dedup.DefaultConfig()
	return &Config{
		Env:         "development",
		ServiceName: "hookbrief",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
		},
		DB: DBConfig{
			Driver:        "sqlite",
			SlowThreshold: Duration{Duration: time.Second},
			AutoMigrate:   true,
		},
		Cache: CacheConfig{
			SignalTTL:  Duration{Duration: time.Minute},
			MaxEntries: 1024,
		},
		LLM: llm.Config{
			Type:  "mock",
			Model: "gpt-4o-mini",
		},
		Brief: BriefConfig{
			ProviderTimeout:    Duration{Duration: b.ProviderTimeout},
			AuditTimeout:       Duration{Duration: b.AuditTimeout},
			MaxSpokenHooks:     b.MaxSpokenHooks,
			MaxOptions:         b.MaxOptions,
			RecentHooksLimit:   b.RecentHooksLimit,
			ExemplarLimit:      b.ExemplarLimit,
			SignalLimit:        b.SignalLimit,
			IncludeDiagnostics: b.IncludeDiagnostics,
		},
		Dedup: DedupConfig{
			WorkTimeout: Duration{Duration: d.WorkTimeout},
			MaxWaiters:  d.MaxWaiters,
		},
		OTel: observability.TracingConfig{SampleRatio: 0.1},
		Log:  LogConfig{Mode: "development", Redact: true},
	}
}

// LoadConfig reads defaults, then the YAML file at BRIEF_CONFIG_PATH (or
// ./config/config.yaml when present), then environment overrides.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := envutil.String("BRIEF_CONFIG_PATH", "")
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("APP_ENV", cfg.Env)
	cfg.Log.Mode = envutil.String("LOG_MODE", cfg.Log.Mode)
	cfg.Log.Redact = envutil.Bool("LOG_REDACT", cfg.Log.Redact)
	cfg.Log.HashSalt = envutil.String("LOG_HASH_SALT", cfg.Log.HashSalt)

	cfg.HTTP.Addr = envutil.String("HB_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.CORSOrigins = envutil.List("HB_CORS_ORIGINS", cfg.HTTP.CORSOrigins)

	cfg.DB.Driver = envutil.String("HB_DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = envutil.String("DATABASE_DSN", cfg.DB.DSN)
	cfg.DB.AutoMigrate = envutil.Bool("HB_DB_AUTO_MIGRATE", cfg.DB.AutoMigrate)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Cache.SignalTTL.Duration = envutil.Duration("HB_SIGNAL_CACHE_TTL", cfg.Cache.SignalTTL.Duration)

	cfg.LLM.Type = envutil.String("LLM_PROVIDER", cfg.LLM.Type)
	cfg.LLM.Model = envutil.String("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = envutil.String("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = envutil.String("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.RateLimitRPS = envutil.Float("LLM_RATE_LIMIT_RPS", cfg.LLM.RateLimitRPS)

	cfg.Brief.ProviderTimeout.Duration = envutil.Duration("HB_PROVIDER_TIMEOUT", cfg.Brief.ProviderTimeout.Duration)
	cfg.Dedup.WorkTimeout.Duration = envutil.Duration("HB_DEDUP_WORK_TIMEOUT", cfg.Dedup.WorkTimeout.Duration)

	cfg.OTel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.OTel.Enabled)
	cfg.OTel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTel.Endpoint)
	cfg.OTel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.OTel.Insecure)
	cfg.OTel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.OTel.SampleRatio)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
}

func (c *Config) normalize() error {
	c.Env = strings.TrimSpace(c.Env)
	if c.Env == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = "hookbrief"
	}
	if c.OTel.ServiceName == "" {
		c.OTel.ServiceName = c.ServiceName
	}
	if c.OTel.Environment == "" {
		c.OTel.Environment = c.Env
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = ":8080"
	}

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case "sqlite":
	case "postgres", "postgresql":
		c.DB.Driver = "postgres"
		if strings.TrimSpace(c.DB.DSN) == "" {
			return errors.New("config: db.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}

	if c.Cache.SignalTTL.Duration < 0 {
		return errors.New("config: cache.signal_ttl must not be negative")
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 1024
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.Dedup.MaxWaiters < 0 {
		return errors.New("config: dedup.max_waiters must not be negative")
	}
	if c.Brief.ProviderTimeout.Duration > 0 && c.Dedup.WorkTimeout.Duration > 0 &&
		c.Dedup.WorkTimeout.Duration <= c.Brief.ProviderTimeout.Duration {
		return errors.New("config: dedup.work_timeout must exceed brief.provider_timeout")
	}
	return nil
}

func (c *Config) dbConfig() db.Config {
	return db.Config{
		Driver:        c.DB.Driver,
		DSN:           c.DB.DSN,
		SlowThreshold: c.DB.SlowThreshold.Duration,
		AutoMigrate:   c.DB.AutoMigrate,
	}
}

func (c *Config) briefConfig() brief.Config {
	cfg := brief.DefaultConfig()
	cfg.ProviderTimeout = c.Brief.ProviderTimeout.Duration
	cfg.AuditTimeout = c.Brief.AuditTimeout.Duration
	cfg.MaxSpokenHooks = c.Brief.MaxSpokenHooks
	cfg.MaxOptions = c.Brief.MaxOptions
	cfg.RecentHooksLimit = c.Brief.RecentHooksLimit
	cfg.ExemplarLimit = c.Brief.ExemplarLimit
	cfg.SignalLimit = c.Brief.SignalLimit
	cfg.IncludeDiagnostics = c.Brief.IncludeDiagnostics
	if c.LLM.Temperature > 0 {
		cfg.Temperature = c.LLM.Temperature
	}
	if c.LLM.MaxTokens > 0 {
		cfg.MaxTokens = c.LLM.MaxTokens
	}
	return cfg
}

func (c *Config) dedupConfig() dedup.Config {
	return dedup.Config{WorkTimeout: c.Dedup.WorkTimeout.Duration, MaxWaiters: c.Dedup.MaxWaiters}
}
