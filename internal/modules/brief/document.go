package brief

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/render"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
)

type Document struct {
	ContentType string
	Body        []byte
}

// AuditDocument renders a recorded generation as an editing brief.
// format is "md" (default) or "html".
func (u Usecases) AuditDocument(ctx context.Context, auditID, format string) (*Document, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "md"
	}
	if format != "md" && format != "html" {
		return nil, apierr.Validation("invalid_format", fmt.Errorf("format must be md or html"))
	}
	if u.deps.Audits == nil {
		return nil, apierr.NotFound("audit_not_found", fmt.Errorf("audit log not configured"))
	}
	rec, err := u.deps.Audits.Get(ctx, auditID)
	if err != nil {
		return nil, err
	}
	var res types.GenerationResult
	if err := json.Unmarshal(rec.Result, &res); err != nil {
		return nil, fmt.Errorf("decode audit result: %w", err)
	}

	productName := rec.SubjectID
	if u.deps.Context != nil {
		if p, err := u.deps.Context.Product(ctx, rec.SubjectID); err == nil && p != nil {
			productName = p.Name
		}
	}

	doc := render.Input{
		ProductName:   productName,
		CorrelationID: rec.CorrelationID,
		CreatedAt:     rec.CreatedAt,
		IsFallback:    rec.IsFallback,
		Result:        &res,
	}
	if format == "html" {
		body, err := render.HTML(doc)
		if err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		return &Document{ContentType: "text/html; charset=utf-8", Body: body}, nil
	}
	return &Document{ContentType: "text/markdown; charset=utf-8", Body: []byte(render.Markdown(doc))}, nil
}
