package testutil

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	dbpkg "github.com/yungbote/hookbrief-backend/internal/data/db"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}
}

// DB returns a migrated database. With TEST_POSTGRES_DSN set it is a shared
// postgres connection; otherwise each call gets its own in-memory sqlite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		pgOnce.Do(func() {
			pgDB, pgErr = gorm.Open(postgres.Open(dsn), gormConfig())
			if pgErr != nil {
				return
			}
			pgErr = dbpkg.AutoMigrateAll(pgDB)
		})
		if pgErr != nil {
			tb.Fatalf("failed to init test db: %v", pgErr)
		}
		return pgDB
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
