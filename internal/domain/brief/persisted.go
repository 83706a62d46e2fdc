package brief

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HookSignal is the stored outcome tally for one normalized hook text of a subject.
type HookSignal struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SubjectID string `gorm:"type:text;not null;index;index:idx_hook_signal_subject_key,unique,priority:1" json:"subject_id"`
	Key       string `gorm:"column:text_key;type:text;not null;index:idx_hook_signal_subject_key,unique,priority:2" json:"key"`
	Text      string `gorm:"type:text;not null" json:"text"`

	Approvals     int `gorm:"not null;default:0" json:"approvals"`
	Rejections    int `gorm:"not null;default:0" json:"rejections"`
	Underperforms int `gorm:"not null;default:0" json:"underperforms"`
	Winners       int `gorm:"not null;default:0" json:"winners"`
	Postings      int `gorm:"not null;default:0" json:"postings"`

	LastApprovedAt *time.Time `json:"last_approved_at,omitempty"`
	LastRejectedAt *time.Time `json:"last_rejected_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (HookSignal) TableName() string { return "hook_signal" }

func (s *HookSignal) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *HookSignal) Historical() HistoricalSignal {
	return HistoricalSignal{
		Text:           s.Text,
		Key:            s.Key,
		Approvals:      s.Approvals,
		Rejections:     s.Rejections,
		Underperforms:  s.Underperforms,
		Winners:        s.Winners,
		Postings:       s.Postings,
		LastApprovedAt: s.LastApprovedAt,
		LastRejectedAt: s.LastRejectedAt,
	}
}

// HookExemplar is a curated high-quality hook. An empty Category applies to all products.
type HookExemplar struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Category string `gorm:"type:text;not null;default:'';index" json:"category"`
	Family   string `gorm:"type:text;not null;default:''" json:"family"`
	Text     string `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (HookExemplar) TableName() string { return "hook_exemplar" }

func (e *HookExemplar) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// AuditRecord is the append-only log of a full generation. Rows are never updated.
type AuditRecord struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SubjectID     string  `gorm:"type:text;not null;index:idx_generation_audit_subject_created,priority:1" json:"subject_id"`
	Nonce         *string `gorm:"type:text;uniqueIndex" json:"nonce,omitempty"`
	CorrelationID string  `gorm:"type:text;not null;index" json:"correlation_id"`
	Mode          string  `gorm:"type:text;not null" json:"mode"`

	Input  datatypes.JSON `json:"input"`
	Result datatypes.JSON `json:"result"`

	Provider           string `gorm:"type:text;not null;default:''" json:"provider"`
	ParseStrategy      string `gorm:"type:text;not null;default:''" json:"parse_strategy"`
	IsFallback         bool   `gorm:"not null;default:false" json:"is_fallback"`
	FallbackReason     string `gorm:"type:text;not null;default:''" json:"fallback_reason"`
	SelectedSpokenHook string `gorm:"type:text;not null;default:''" json:"selected_spoken_hook"`

	CreatedAt time.Time `gorm:"not null;index:idx_generation_audit_subject_created,priority:2" json:"created_at"`
}

func (AuditRecord) TableName() string { return "generation_audit" }

func (a *AuditRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
