package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	httpMW "github.com/yungbote/hookbrief-backend/internal/http/middleware"
	"github.com/yungbote/hookbrief-backend/internal/http/response"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
)

type BriefService interface {
	Generate(ctx context.Context, req types.GenerationRequest) (*brief.Response, error)
	RecordFeedback(ctx context.Context, in brief.FeedbackInput) (*types.HistoricalSignal, error)
	AuditDocument(ctx context.Context, auditID, format string) (*brief.Document, error)
}

type BriefHandler struct {
	briefs BriefService
}

func NewBriefHandler(briefs BriefService) *BriefHandler {
	return &BriefHandler{briefs: briefs}
}

type generateRequest struct {
	SubjectID string `json:"subject_id"`
	// ProductID is accepted as an alias for SubjectID.
	ProductID      string                  `json:"product_id"`
	Mode           string                  `json:"mode"`
	Tuning         types.Tuning            `json:"tuning"`
	Reference      string                  `json:"reference"`
	Nonce          string                  `json:"nonce"`
	LockedFields   []string                `json:"locked_fields"`
	PreviousResult *types.GenerationResult `json:"previous_result"`
	EditedValues   map[string]string       `json:"edited_values"`
	CorrelationID  string                  `json:"correlation_id"`
}

func (r generateRequest) toDomain() types.GenerationRequest {
	subject := strings.TrimSpace(r.SubjectID)
	if subject == "" {
		subject = strings.TrimSpace(r.ProductID)
	}
	return types.GenerationRequest{
		SubjectID:      subject,
		Mode:           types.Mode(strings.ToLower(strings.TrimSpace(r.Mode))),
		Tuning:         r.Tuning,
		Reference:      r.Reference,
		Nonce:          strings.TrimSpace(r.Nonce),
		LockedFields:   r.LockedFields,
		PreviousResult: r.PreviousResult,
		EditedValues:   r.EditedValues,
		CorrelationID:  strings.TrimSpace(r.CorrelationID),
	}
}

// POST /api/briefs/generate
func (h *BriefHandler) Generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid_request_body", err))
		return
	}
	req := body.toDomain()
	req.CorrelationID = httpMW.SetCorrelationID(c, req.CorrelationID)
	resp, err := h.briefs.Generate(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	httpMW.SetCorrelationID(c, resp.CorrelationID)
	response.RespondOK(c, resp)
}

type feedbackRequest struct {
	SubjectID string `json:"subject_id"`
	Text      string `json:"text"`
	Outcome   string `json:"outcome"`
}

// POST /api/briefs/feedback
func (h *BriefHandler) Feedback(c *gin.Context) {
	var body feedbackRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid_request_body", err))
		return
	}
	sig, err := h.briefs.RecordFeedback(c.Request.Context(), brief.FeedbackInput{
		SubjectID: body.SubjectID,
		Text:      body.Text,
		Outcome:   body.Outcome,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "data": sig})
}

// GET /api/briefs/audits/:id/brief?format=md|html
func (h *BriefHandler) AuditBrief(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.RespondAPIError(c, apierr.Validation("invalid_audit_id", fmt.Errorf("audit id required")))
		return
	}
	doc, err := h.briefs.AuditDocument(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
