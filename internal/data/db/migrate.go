package db

import (
	types "github.com/yungbote/hookbrief-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalog
		&types.Product{},

		// Generation history
		&types.HookSignal{},
		&types.HookExemplar{},
		&types.AuditRecord{},
	)
}
