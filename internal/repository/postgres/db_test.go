package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
)

func TestWrapDefaultsTransactionSlots(t *testing.T) {
	db := Wrap(nil, 0)
	if !db.txSlots.TryAcquire(defaultMaxConcurrentTx) {
		t.Fatalf("expected %d free slots", defaultMaxConcurrentTx)
	}
	if db.txSlots.TryAcquire(1) {
		t.Error("expected no slot beyond the default")
	}
}

func TestWithTxWaitsForSlot(t *testing.T) {
	db := Wrap(nil, 1)
	if !db.txSlots.TryAcquire(1) {
		t.Fatal("expected a free slot")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("fn must not run without a transaction slot")
	}
}
