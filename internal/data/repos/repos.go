package repos

import (
	"github.com/yungbote/hookbrief-backend/internal/data/repos/catalog"
	"github.com/yungbote/hookbrief-backend/internal/data/repos/generation"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ProductRepo = catalog.ProductRepo

type HookSignalRepo = generation.HookSignalRepo
type HookExemplarRepo = generation.HookExemplarRepo
type AuditRepo = generation.AuditRepo

type Repos struct {
	Products  ProductRepo
	Signals   HookSignalRepo
	Exemplars HookExemplarRepo
	Audits    AuditRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) Repos {
	return Repos{
		Products:  catalog.NewProductRepo(db, baseLog),
		Signals:   generation.NewHookSignalRepo(db, baseLog),
		Exemplars: generation.NewHookExemplarRepo(db, baseLog),
		Audits:    generation.NewAuditRepo(db, baseLog),
	}
}
