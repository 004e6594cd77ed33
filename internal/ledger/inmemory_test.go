package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/naira-ledger/naira_ledger/internal/money"
)

func TestMemoryStoreLockExcludesSecondLocker(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 100)

	tx1, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx1: %v", err)
	}
	if _, err := tx1.LockWallet(ctx, "wallet-a"); err != nil {
		t.Fatalf("tx1 lock: %v", err)
	}

	tx2, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx2: %v", err)
	}
	if _, err := tx2.LockWallet(ctx, "wallet-a"); !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("expected lock failure while tx1 holds the row, got %v", err)
	}

	if err := tx1.Rollback(ctx); err != nil {
		t.Fatalf("tx1 rollback: %v", err)
	}

	tx3, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx3: %v", err)
	}
	if _, err := tx3.LockWallet(ctx, "wallet-a"); err != nil {
		t.Fatalf("lock after release failed: %v", err)
	}
	tx3.Rollback(ctx)
}

func TestMemoryStoreCommitAppliesStagedWrites(t *testing.T) {
	store := NewMemoryStore(time.Second)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 100)

	tx, _ := store.Begin(ctx)
	if _, err := tx.LockWallet(ctx, "wallet-a"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := tx.UpdateBalance(ctx, "wallet-a", money.Money(250)); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Staged write is not visible before commit.
	if w, _ := store.Get("wallet-a"); w.Balance != 100 {
		t.Fatalf("write visible before commit: %d", w.Balance)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if w, _ := store.Get("wallet-a"); w.Balance != 250 {
		t.Fatalf("expected 250 after commit, got %d", w.Balance)
	}
}

func TestMemoryStoreRollbackDiscardsStagedWrites(t *testing.T) {
	store := NewMemoryStore(time.Second)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 100)

	tx, _ := store.Begin(ctx)
	if _, err := tx.LockWallet(ctx, "wallet-a"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := tx.UpdateBalance(ctx, "wallet-a", money.Money(999)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if w, _ := store.Get("wallet-a"); w.Balance != 100 {
		t.Fatalf("rollback leaked staged write: %d", w.Balance)
	}
}

func TestMemoryStoreLockMissingWalletReleasesLock(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()

	tx, _ := store.Begin(ctx)
	if _, err := tx.LockWallet(ctx, "wallet-a"); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	tx.Rollback(ctx)

	// The failed lock must not leave the row permanently held.
	SeedWallet(store, "wallet-a", "user-1", 10)
	tx2, _ := store.Begin(ctx)
	if _, err := tx2.LockWallet(ctx, "wallet-a"); err != nil {
		t.Fatalf("lock after failed lookup: %v", err)
	}
	tx2.Rollback(ctx)
}

func TestMemoryStoreUpdateRequiresLock(t *testing.T) {
	store := NewMemoryStore(time.Second)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 100)

	tx, _ := store.Begin(ctx)
	if err := tx.UpdateBalance(ctx, "wallet-a", money.Money(1)); err == nil {
		t.Fatal("expected update without lock to fail")
	}
	tx.Rollback(ctx)
}
