package domain

import (
	"github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/domain/catalog"
)

type Product = catalog.Product

type HookSignal = brief.HookSignal
type HookExemplar = brief.HookExemplar
type AuditRecord = brief.AuditRecord

type GenerationResult = brief.GenerationResult
type GenerationRequest = brief.GenerationRequest
type HistoricalSignal = brief.HistoricalSignal
type SignalSnapshot = brief.SignalSnapshot
type Outcome = brief.Outcome

const (
	OutcomeApproved       = brief.OutcomeApproved
	OutcomeRejected       = brief.OutcomeRejected
	OutcomeUnderperformed = brief.OutcomeUnderperformed
	OutcomeWinner         = brief.OutcomeWinner
	OutcomePosted         = brief.OutcomePosted
)
