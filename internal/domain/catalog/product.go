package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is the subject a creative brief is generated for.
type Product struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name     string `gorm:"type:text;not null" json:"name"`
	Category string `gorm:"type:text;not null;default:'';index" json:"category"`
	Notes    string `gorm:"type:text;not null;default:''" json:"notes"`
	Audience string `gorm:"type:text;not null;default:''" json:"audience"`

	// Benefits and PainPoints are JSON string arrays.
	Benefits   datatypes.JSON `json:"benefits"`
	PainPoints datatypes.JSON `json:"pain_points"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
