package brief

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

func TestRecordFeedback(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	ctx := context.Background()

	sig, err := h.u.RecordFeedback(ctx, FeedbackInput{SubjectID: h.product.ID.String(), Text: "Stop scrolling", Outcome: "Approved"})
	if err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}
	if sig.Approvals != 1 || len(h.signals.recorded) != 1 || h.signals.recorded[0] != types.OutcomeApproved {
		t.Fatalf("recorded=%v sig=%+v", h.signals.recorded, sig)
	}

	cases := []FeedbackInput{
		{SubjectID: "", Text: "x", Outcome: "approved"},
		{SubjectID: h.product.ID.String(), Text: " ", Outcome: "approved"},
		{SubjectID: h.product.ID.String(), Text: "x", Outcome: "loved"},
	}
	for i, in := range cases {
		if _, err := h.u.RecordFeedback(ctx, in); !apierr.Is(err, apierr.KindValidation) {
			t.Fatalf("case %d: expected VALIDATION, got %v", i, err)
		}
	}
	if _, err := h.u.RecordFeedback(ctx, FeedbackInput{SubjectID: "nope", Text: "x", Outcome: "rejected"}); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAuditDocument(t *testing.T) {
	h := newHarness(t, &fakeProvider{}, nil)
	ctx := context.Background()
	resp, err := h.u.Generate(ctx, h.request())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	doc, err := h.u.AuditDocument(ctx, resp.Meta.AuditID, "")
	if err != nil {
		t.Fatalf("AuditDocument: %v", err)
	}
	if !strings.HasPrefix(doc.ContentType, "text/markdown") || !strings.Contains(string(doc.Body), "# Editing Brief: Glow Serum") {
		t.Fatalf("doc=%s", doc.Body)
	}

	html, err := h.u.AuditDocument(ctx, resp.Meta.AuditID, "HTML")
	if err != nil {
		t.Fatalf("AuditDocument html: %v", err)
	}
	if !strings.HasPrefix(html.ContentType, "text/html") || !strings.Contains(string(html.Body), "<h1>") {
		t.Fatalf("html=%s", html.Body)
	}

	if _, err := h.u.AuditDocument(ctx, resp.Meta.AuditID, "pdf"); !apierr.Is(err, apierr.KindValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if _, err := h.u.AuditDocument(ctx, "missing", "md"); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

type recordingObserver struct {
	mu          sync.Mutex
	generations []string
	calls       []string
	feedback    []string
}

func (o *recordingObserver) ObserveGeneration(mode, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generations = append(o.generations, mode+"/"+outcome)
}

func (o *recordingObserver) ObserveProviderCall(provider, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, provider+"/"+status)
}

func (o *recordingObserver) ObserveFeedback(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.feedback = append(o.feedback, outcome)
}

func TestObserverSeesOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	provider := &fakeProvider{reply: func(ctx context.Context, req llm.Request) (string, error) {
		return "", &llm.Error{Provider: "fake", Status: 500, Err: errors.New("boom")}
	}}
	h := newHarness(t, provider, func(d *UsecasesDeps) { d.Metrics = obs })
	ctx := context.Background()

	if _, err := h.u.Generate(ctx, h.request()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := h.u.Generate(ctx, types.GenerationRequest{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := h.u.RecordFeedback(ctx, FeedbackInput{SubjectID: h.product.ID.String(), Text: "x", Outcome: "winner"}); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}

	want := []string{"full/" + ReasonProviderError, "full/VALIDATION"}
	if strings.Join(obs.generations, ",") != strings.Join(want, ",") {
		t.Fatalf("generations=%v", obs.generations)
	}
	if len(obs.calls) != 1 || obs.calls[0] != "fake/error" {
		t.Fatalf("calls=%v", obs.calls)
	}
	if len(obs.feedback) != 1 || obs.feedback[0] != "winner" {
		t.Fatalf("feedback=%v", obs.feedback)
	}
}
