package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/hookbrief-backend/internal/data/db"
	"github.com/yungbote/hookbrief-backend/internal/data/repos"
	"github.com/yungbote/hookbrief-backend/internal/http"
	httpH "github.com/yungbote/hookbrief-backend/internal/http/handlers"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief"
	"github.com/yungbote/hookbrief-backend/internal/observability"
	"github.com/yungbote/hookbrief-backend/internal/platform/cache"
	"github.com/yungbote/hookbrief-backend/internal/platform/dedup"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm/router"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

type App struct {
	Log     *logger.Logger
	DB      *gorm.DB
	Cfg     *Config
	Repos   repos.Repos
	Briefs  brief.Usecases
	Server  *http.Server
	Metrics *observability.Metrics

	dbSvc           *db.Service
	redis           *cache.Redis
	shutdownTracing func(context.Context) error
	cancel          context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewWithOptions(cfg.Log.Mode, logger.Options{Redact: cfg.Log.Redact, HashSalt: cfg.Log.HashSalt})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(ctx, cfg, log)
}

// NewWithConfig wires every component from cfg. On error everything opened so far is closed.
func NewWithConfig(ctx context.Context, cfg *Config, log *logger.Logger) (a *App, err error) {
	a = &App{Log: log, Cfg: cfg}
	defer func() {
		if err != nil {
			a.Close(context.Background())
			a = nil
		}
	}()

	a.shutdownTracing, err = observability.InitTracing(ctx, log, cfg.OTel)
	if err != nil {
		return a, fmt.Errorf("init tracing: %w", err)
	}
	if cfg.Metrics.Enabled {
		a.Metrics = observability.NewMetrics()
		log.Info("Observability metrics enabled")
	}

	log.Info("Opening database...", "driver", cfg.DB.Driver)
	a.dbSvc, err = db.Open(cfg.dbConfig(), log)
	if err != nil {
		return a, fmt.Errorf("init db: %w", err)
	}
	a.DB = a.dbSvc.DB()
	a.Repos = repos.New(a.DB, log)

	signalCache, err := a.wireCache(ctx)
	if err != nil {
		return a, err
	}

	provider, err := router.New(cfg.LLM, log)
	if err != nil {
		return a, fmt.Errorf("init model provider: %w", err)
	}

	log.Info("Wiring brief usecases...")
	briefCfg := cfg.briefConfig()
	var signals brief.SignalStore = brief.NewRepoSignalStore(a.Repos.Signals, a.Repos.Exemplars, briefCfg)
	signals = brief.NewCachedSignalStore(signals, signalCache, cfg.Cache.SignalTTL.Duration, log)

	deps := brief.UsecasesDeps{
		Log:     log,
		Context: brief.NewRepoContext(a.Repos.Products),
		Signals: signals,
		Audits:  brief.NewRepoAuditSink(a.Repos.Audits),
		Dedup:   dedup.New(cfg.dedupConfig(), log),
		Config:  briefCfg,
	}
	if provider != nil {
		deps.Provider = provider
	}
	if a.Metrics != nil {
		deps.Metrics = a.Metrics
	}
	a.Briefs = brief.New(deps)

	a.Server = http.NewServer(http.ServerConfig{
		Addr:              cfg.HTTP.Addr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.HTTP.WriteTimeout.Duration,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout.Duration,
	}, http.RouterConfig{
		Log:           log,
		Metrics:       a.Metrics,
		ServiceName:   cfg.ServiceName,
		CORSOrigins:   cfg.HTTP.CORSOrigins,
		BriefHandler:  httpH.NewBriefHandler(a.Briefs),
		HealthHandler: httpH.NewHealthHandler(a.healthChecks()...),
	})
	return a, nil
}

// wireCache returns redis when an address is configured, otherwise an
// in-process cache. A zero TTL disables signal caching entirely.
func (a *App) wireCache(ctx context.Context) (cache.Cache, error) {
	if a.Cfg.Cache.SignalTTL.Duration <= 0 {
		return nil, nil
	}
	if a.Cfg.Redis.Addr != "" {
		r, err := cache.NewRedis(ctx, a.Cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.redis = r
		a.Log.Info("Signal cache: redis", "addr", a.Cfg.Redis.Addr)
		return r, nil
	}
	a.Log.Info("Signal cache: memory", "max_entries", a.Cfg.Cache.MaxEntries)
	return cache.NewMemory(a.Cfg.Cache.MaxEntries), nil
}

func (a *App) healthChecks() []httpH.HealthCheck {
	checks := []httpH.HealthCheck{{
		Name: "db",
		Check: func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if a.redis != nil {
		checks = append(checks, httpH.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return a.redis.Client().Ping(ctx).Err() },
		})
	}
	return checks
}

// Start launches background collectors.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	if a.Metrics != nil && a.redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.redis.Client(), 0)
	}
}

// Run serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Start(ctx)
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTP.Addr)
	return a.Server.Run(ctx)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.dbSvc != nil {
		if err := a.dbSvc.Close(); err != nil && a.Log != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.shutdownTracing != nil {
		_ = a.shutdownTracing(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
