package brief

import (
	"context"
	"testing"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/platform/cache"
)

func TestCachedSignalStore(t *testing.T) {
	inner := &fakeSignals{signals: []types.HistoricalSignal{{Key: "a", Text: "A", Approvals: 1}}}
	store := NewCachedSignalStore(inner, cache.NewMemory(16), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := store.Signals(ctx, "p1")
		if err != nil || len(got) != 1 || got[0].Approvals != 1 {
			t.Fatalf("Signals: got=%+v err=%v", got, err)
		}
	}
	if inner.Reads() != 1 {
		t.Fatalf("expected one backing read, got %d", inner.Reads())
	}

	if _, err := store.RecordOutcome(ctx, "p1", "A", types.OutcomeApproved, testNow); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if _, err := store.Signals(ctx, "p1"); err != nil {
		t.Fatalf("Signals: %v", err)
	}
	if inner.Reads() != 2 {
		t.Fatalf("expected cache invalidation after feedback, reads=%d", inner.Reads())
	}
}

func TestCachedSignalStoreDisabled(t *testing.T) {
	inner := &fakeSignals{}
	if got := NewCachedSignalStore(inner, nil, time.Minute, nil); got != SignalStore(inner) {
		t.Fatalf("nil cache should return the inner store")
	}
}
