package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/naira-ledger/naira_ledger/internal/ledger"
)

func newTestService() (*Service, *ledger.MemoryWalletStore) {
	store := ledger.NewMemoryStore(time.Second)
	return NewService(NewMemoryRepository(store)), store
}

func TestServiceCreateAndBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	ownerID := uuid.NewString()

	w, err := svc.Create(ctx, CreateInput{OwnerID: ownerID, Label: "savings", InitialBalance: 2_500})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if w.OwnerID != ownerID || w.Label != "savings" {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	balance, err := svc.Balance(ctx, w.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Amount != 2_500 {
		t.Fatalf("expected 2500, got %d", balance.Amount)
	}
}

func TestServiceCreateRejectsNegativeInitialBalance(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Create(context.Background(), CreateInput{OwnerID: uuid.NewString(), InitialBalance: -1}); err == nil {
		t.Fatal("expected negative initial balance to be rejected")
	}
}

func TestServiceTotalBalance(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	ownerID := uuid.NewString()
	otherID := uuid.NewString()

	for _, amount := range []int64{1_000, 2_000, 500} {
		if _, err := svc.Create(ctx, CreateInput{OwnerID: ownerID, InitialBalance: amount}); err != nil {
			t.Fatalf("create wallet: %v", err)
		}
	}
	if _, err := svc.Create(ctx, CreateInput{OwnerID: otherID, InitialBalance: 9_999}); err != nil {
		t.Fatalf("create other wallet: %v", err)
	}

	total, err := svc.TotalBalance(ctx, ownerID)
	if err != nil {
		t.Fatalf("total balance: %v", err)
	}
	if total != 3_500 {
		t.Fatalf("expected 3500, got %d", total)
	}

	wallets, err := svc.ListByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(wallets) != 3 {
		t.Fatalf("expected 3 wallets, got %d", len(wallets))
	}
}

func TestServiceOwns(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	ownerID := uuid.NewString()

	w, err := svc.Create(ctx, CreateInput{OwnerID: ownerID})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	owns, err := svc.Owns(ctx, ownerID, w.ID)
	if err != nil || !owns {
		t.Fatalf("expected ownership, got owns=%v err=%v", owns, err)
	}

	owns, err = svc.Owns(ctx, uuid.NewString(), w.ID)
	if err != nil || owns {
		t.Fatalf("expected no ownership, got owns=%v err=%v", owns, err)
	}

	if _, err := svc.Owns(ctx, ownerID, uuid.NewString()); !errors.Is(err, ledger.ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}
}
