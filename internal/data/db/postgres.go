package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

type Config struct {
	// Driver is "postgres" or "sqlite".
	Driver string
	DSN    string

	SlowThreshold time.Duration
	AutoMigrate   bool
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func gormConfig(slow time.Duration) *gorm.Config {
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLog,
	}
}

// Open connects using cfg.Driver and optionally migrates every table.
func Open(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgres", "postgresql":
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, fmt.Errorf("postgres dsn required")
		}
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig(cfg.SlowThreshold))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialector.Name(), err)
	}

	if cfg.AutoMigrate {
		if err := AutoMigrateAll(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		serviceLog.Info("database migrated", "driver", dialector.Name())
	}

	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
