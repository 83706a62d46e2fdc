package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/hookbrief-backend/internal/data/repos/testutil"
	types "github.com/yungbote/hookbrief-backend/internal/domain"
	"gorm.io/gorm"
)

func TestHookSignalRepoRecordOutcome(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewHookSignalRepo(db, testutil.Logger(t))

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := repo.RecordOutcome(ctx, tx, "p1", "stop scrolling", "Stop scrolling!", types.OutcomeApproved, t0); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if _, err := repo.RecordOutcome(ctx, tx, "p1", "stop scrolling", "Stop scrolling!", types.OutcomeApproved, t0.Add(time.Hour)); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	sig, err := repo.RecordOutcome(ctx, tx, "p1", "stop scrolling", "Stop scrolling!", types.OutcomeRejected, t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if sig.Approvals != 2 || sig.Rejections != 1 {
		t.Fatalf("tally: approvals=%d rejections=%d", sig.Approvals, sig.Rejections)
	}
	if sig.LastRejectedAt == nil || !sig.LastRejectedAt.Equal(t0.Add(2*time.Hour)) {
		t.Fatalf("last rejected at: %v", sig.LastRejectedAt)
	}

	if _, err := repo.RecordOutcome(ctx, tx, "p2", "other", "Other", types.OutcomeWinner, t0); err != nil {
		t.Fatalf("RecordOutcome p2: %v", err)
	}

	list, err := repo.ListBySubject(ctx, tx, "p1", 0)
	if err != nil {
		t.Fatalf("ListBySubject: %v", err)
	}
	if len(list) != 1 || list[0].Key != "stop scrolling" {
		t.Fatalf("ListBySubject: %+v", list)
	}

	if _, err := repo.RecordOutcome(ctx, tx, "p1", "k", "t", types.Outcome("liked"), t0); err == nil {
		t.Fatalf("expected unknown outcome error")
	}
}

func TestHookSignalRepoCountsEveryOutcome(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewHookSignalRepo(db, testutil.Logger(t))

	t0 := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	var sig *types.HookSignal
	for i, o := range []types.Outcome{
		types.OutcomeApproved,
		types.OutcomeRejected,
		types.OutcomeUnderperformed,
		types.OutcomeWinner,
		types.OutcomePosted,
	} {
		var err error
		sig, err = repo.RecordOutcome(ctx, tx, "p3", "glow up", "Glow up", o, t0.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("RecordOutcome %s: %v", o, err)
		}
	}
	if sig.Approvals != 1 || sig.Rejections != 1 || sig.Underperforms != 1 || sig.Winners != 1 || sig.Postings != 1 {
		t.Fatalf("counters: %+v", sig)
	}
}

func TestHookExemplarRepoListForCategory(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewHookExemplarRepo(db, testutil.Logger(t))

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedExemplar(t, ctx, tx, "skincare", "POV: your skin finally behaves", t0)
	testutil.SeedExemplar(t, ctx, tx, "", "Nobody talks about this", t0.Add(time.Minute))
	testutil.SeedExemplar(t, ctx, tx, "kitchen", "Your pan is lying to you", t0.Add(2*time.Minute))

	got, err := repo.ListForCategory(ctx, tx, "skincare", 10)
	if err != nil {
		t.Fatalf("ListForCategory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exemplars, got %d", len(got))
	}
	if got[0].Text != "Nobody talks about this" {
		t.Fatalf("expected newest first, got %q", got[0].Text)
	}
}

func TestAuditRepoDuplicateNonceIsAlreadyRecorded(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAuditRepo(db, testutil.Logger(t))

	nonce := "n-1"
	first := &types.AuditRecord{SubjectID: "p1", Nonce: &nonce, CorrelationID: "c1", Mode: "full", SelectedSpokenHook: "Hook A"}
	created, err := repo.Create(ctx, tx, first)
	if err != nil || !created {
		t.Fatalf("first Create: created=%v err=%v", created, err)
	}

	dupNonce := "n-1"
	second := &types.AuditRecord{SubjectID: "p1", Nonce: &dupNonce, CorrelationID: "c2", Mode: "full", SelectedSpokenHook: "Hook B"}
	created, err = repo.Create(ctx, tx, second)
	if err != nil {
		t.Fatalf("duplicate Create returned error: %v", err)
	}
	if created {
		t.Fatalf("duplicate nonce must not create a second record")
	}

	// The surrounding transaction is still usable.
	got, err := repo.GetByID(ctx, tx, first.ID)
	if err != nil || got == nil || got.SelectedSpokenHook != "Hook A" {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}

	blank := ""
	a := &types.AuditRecord{SubjectID: "p1", Nonce: &blank, CorrelationID: "c3", Mode: "full"}
	b := &types.AuditRecord{SubjectID: "p1", Nonce: &blank, CorrelationID: "c4", Mode: "full"}
	for _, rec := range []*types.AuditRecord{a, b} {
		if created, err := repo.Create(ctx, tx, rec); err != nil || !created {
			t.Fatalf("blank nonce Create: created=%v err=%v", created, err)
		}
	}
}

func TestAuditRepoRecentSelectedHooks(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAuditRepo(db, testutil.Logger(t))

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedAudit(t, ctx, tx, "p1", "full", "Oldest hook", t0)
	testutil.SeedAudit(t, ctx, tx, "p1", "full", "", t0.Add(time.Minute))
	testutil.SeedAudit(t, ctx, tx, "p1", "partial", "Partial hook", t0.Add(2*time.Minute))
	testutil.SeedAudit(t, ctx, tx, "p1", "full", "Newest hook", t0.Add(3*time.Minute))
	testutil.SeedAudit(t, ctx, tx, "p2", "full", "Other subject", t0.Add(4*time.Minute))

	got, err := repo.RecentSelectedHooks(ctx, tx, "p1", 5)
	if err != nil {
		t.Fatalf("RecentSelectedHooks: %v", err)
	}
	want := []string{"Newest hook", "Oldest hook"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm", gorm.ErrDuplicatedKey, true},
		{"pg", &pgconn.PgError{Code: "23505"}, true},
		{"pg other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: generation_audit.nonce"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v)=%v", tc.err, got)
			}
		})
	}
}
