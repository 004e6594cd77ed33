package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/naira-ledger/naira_ledger/internal/logging"
	"github.com/naira-ledger/naira_ledger/internal/money"
)

// storeAuthority resolves ownership from the same in-memory rows the engine
// mutates, mirroring the production wallet-repository-backed authority.
type storeAuthority struct {
	store *MemoryWalletStore
}

func (a storeAuthority) Owns(_ context.Context, ownerID, walletID string) (bool, error) {
	wallet, ok := a.store.Get(walletID)
	if !ok {
		return false, ErrWalletNotFound
	}
	return wallet.OwnerID == ownerID, nil
}

func newTestEngine(t *testing.T) (*Engine, *MemoryWalletStore) {
	t.Helper()
	store := NewMemoryStore(time.Second)
	engine := NewEngine(store, storeAuthority{store: store}, logging.Discard())
	return engine, store
}

func TestEngineDepositReadAfterWrite(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 1_000)

	snap, err := engine.Deposit(ctx, DepositRequest{WalletID: "wallet-a", OwnerID: "user-1", Amount: 500})
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if snap.Balance != 1_500 {
		t.Fatalf("expected snapshot balance 1500, got %d", snap.Balance)
	}

	stored, _ := store.Get("wallet-a")
	if stored.Balance != 1_500 {
		t.Fatalf("expected stored balance 1500, got %d", stored.Balance)
	}
}

func TestEngineWithdraw(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 2_000)

	snap, err := engine.Withdraw(ctx, WithdrawRequest{WalletID: "wallet-a", OwnerID: "user-1", Amount: 750})
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if snap.Balance != 1_250 {
		t.Fatalf("expected balance 1250, got %d", snap.Balance)
	}
}

func TestEngineWithdrawInsufficientFundsLeavesBalance(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 100)

	_, err := engine.Withdraw(ctx, WithdrawRequest{WalletID: "wallet-a", OwnerID: "user-1", Amount: 101})
	if !errors.Is(err, money.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	stored, _ := store.Get("wallet-a")
	if stored.Balance != 100 {
		t.Fatalf("balance mutated by failed withdraw: %d", stored.Balance)
	}
}

func TestEngineRejectsNonPositiveAmounts(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 500)
	SeedWallet(store, "wallet-b", "user-1", 0)

	for _, amount := range []int64{0, -10} {
		if _, err := engine.Deposit(ctx, DepositRequest{WalletID: "wallet-a", OwnerID: "user-1", Amount: amount}); !errors.Is(err, money.ErrInvalidAmount) {
			t.Fatalf("deposit(%d): expected invalid amount, got %v", amount, err)
		}
		if _, err := engine.Withdraw(ctx, WithdrawRequest{WalletID: "wallet-a", OwnerID: "user-1", Amount: amount}); !errors.Is(err, money.ErrInvalidAmount) {
			t.Fatalf("withdraw(%d): expected invalid amount, got %v", amount, err)
		}
		if _, err := engine.TransferWalletToWallet(ctx, WalletTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToWalletID: "wallet-b", Amount: amount}); !errors.Is(err, money.ErrInvalidAmount) {
			t.Fatalf("transfer(%d): expected invalid amount, got %v", amount, err)
		}
	}

	stored, _ := store.Get("wallet-a")
	if stored.Balance != 500 {
		t.Fatalf("balance mutated by rejected requests: %d", stored.Balance)
	}
}

func TestEngineSelfTransferRejected(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 500)

	_, err := engine.TransferWalletToWallet(ctx, WalletTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToWalletID: "wallet-a", Amount: 50})
	if !errors.Is(err, ErrInvalidTransfer) {
		t.Fatalf("expected invalid transfer, got %v", err)
	}

	_, err = engine.TransferWalletToUser(ctx, UserTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToOwnerID: "user-2", ToWalletID: "wallet-a", Amount: 50})
	if !errors.Is(err, ErrInvalidTransfer) {
		t.Fatalf("expected invalid transfer, got %v", err)
	}
}

func TestEngineUnauthorized(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 500)
	SeedWallet(store, "wallet-b", "user-2", 0)

	if _, err := engine.Withdraw(ctx, WithdrawRequest{WalletID: "wallet-a", OwnerID: "user-2", Amount: 50}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized withdraw, got %v", err)
	}

	// Wallet-to-wallet transfers stay within the caller's wallets, so a
	// destination owned by someone else is rejected too.
	if _, err := engine.TransferWalletToWallet(ctx, WalletTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToWalletID: "wallet-b", Amount: 50}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized wallet transfer, got %v", err)
	}

	// Claiming the wrong owner for the destination of a user transfer fails the
	// destination ownership check.
	if _, err := engine.TransferWalletToUser(ctx, UserTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToOwnerID: "user-3", ToWalletID: "wallet-b", Amount: 50}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized user transfer, got %v", err)
	}

	stored, _ := store.Get("wallet-a")
	if stored.Balance != 500 {
		t.Fatalf("balance mutated by unauthorized requests: %d", stored.Balance)
	}
}

func TestEngineWalletNotFound(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 500)

	if _, err := engine.Deposit(ctx, DepositRequest{WalletID: "missing", OwnerID: "user-1", Amount: 50}); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}
	if _, err := engine.TransferWalletToUser(ctx, UserTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToOwnerID: "user-2", ToWalletID: "missing", Amount: 50}); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found for destination, got %v", err)
	}
}

func TestEngineDepositOverflow(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", math.MaxInt64-5)

	if _, err := engine.Deposit(ctx, DepositRequest{WalletID: "wallet-a", OwnerID: "user-1", Amount: 6}); !errors.Is(err, money.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}

	stored, _ := store.Get("wallet-a")
	if stored.Balance != money.Money(math.MaxInt64-5) {
		t.Fatalf("balance mutated by overflowing deposit: %d", stored.Balance)
	}
}

func TestEngineTransferConservation(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 10_000)
	SeedWallet(store, "wallet-b", "user-1", 250)

	res, err := engine.TransferWalletToWallet(ctx, WalletTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToWalletID: "wallet-b", Amount: 1_500})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if res.From.Balance != 8_500 || res.To.Balance != 1_750 {
		t.Fatalf("unexpected balances: from=%d to=%d", res.From.Balance, res.To.Balance)
	}

	a, _ := store.Get("wallet-a")
	b, _ := store.Get("wallet-b")
	if a.Balance+b.Balance != 10_250 {
		t.Fatalf("money not conserved, total=%d", a.Balance+b.Balance)
	}
}

func TestEngineUserTransfer(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 5_000)
	SeedWallet(store, "wallet-b", "user-2", 100)

	res, err := engine.TransferWalletToUser(ctx, UserTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-a", ToOwnerID: "user-2", ToWalletID: "wallet-b", Amount: 2_000})
	if err != nil {
		t.Fatalf("user transfer failed: %v", err)
	}
	if res.From.Balance != 3_000 || res.To.Balance != 2_100 {
		t.Fatalf("unexpected balances: from=%d to=%d", res.From.Balance, res.To.Balance)
	}
}

func TestEngineConcurrentTransfersNeverOverdraw(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-a", "user-1", 100)
	SeedWallet(store, "wallet-b", "user-1", 0)

	amounts := []int64{80, 50}
	errs := make([]error, len(amounts))

	var wg sync.WaitGroup
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount int64) {
			defer wg.Done()
			_, errs[i] = engine.TransferWalletToWallet(ctx, WalletTransferRequest{
				OwnerID:      "user-1",
				FromWalletID: "wallet-a",
				ToWalletID:   "wallet-b",
				Amount:       amount,
			})
		}(i, amount)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, money.ErrInsufficientFunds):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || failed != 1 {
		t.Fatalf("expected exactly one success and one insufficient-funds failure, got %d/%d", succeeded, failed)
	}

	a, _ := store.Get("wallet-a")
	b, _ := store.Get("wallet-b")
	if a.Balance < 0 {
		t.Fatalf("wallet overdrawn: %d", a.Balance)
	}
	if a.Balance+b.Balance != 100 {
		t.Fatalf("money not conserved, total=%d", a.Balance+b.Balance)
	}
}

func TestEngineOppositeTransfersComplete(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	SeedWallet(store, "wallet-x", "user-1", 1_000)
	SeedWallet(store, "wallet-y", "user-1", 1_000)

	const rounds = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := engine.TransferWalletToWallet(ctx, WalletTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-x", ToWalletID: "wallet-y", Amount: 10}); err != nil {
				t.Errorf("x->y transfer %d failed: %v", i, err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if _, err := engine.TransferWalletToWallet(ctx, WalletTransferRequest{OwnerID: "user-1", FromWalletID: "wallet-y", ToWalletID: "wallet-x", Amount: 10}); err != nil {
				t.Errorf("y->x transfer %d failed: %v", i, err)
				return
			}
		}
	}()
	wg.Wait()

	x, _ := store.Get("wallet-x")
	y, _ := store.Get("wallet-y")
	if x.Balance+y.Balance != 2_000 {
		t.Fatalf("money not conserved, total=%d", x.Balance+y.Balance)
	}
}

// contendedStore always fails lock acquisition, simulating a row held by
// another operation for longer than the lock timeout.
type contendedStore struct{}

func (contendedStore) Begin(context.Context) (Tx, error) { return contendedTx{}, nil }

type contendedTx struct{}

func (contendedTx) LockWallet(context.Context, string) (Wallet, error) {
	return Wallet{}, ErrLockNotAcquired
}
func (contendedTx) UpdateBalance(context.Context, string, money.Money) error { return nil }
func (contendedTx) Commit(context.Context) error                             { return nil }
func (contendedTx) Rollback(context.Context) error                           { return nil }

type allowAllAuthority struct{}

func (allowAllAuthority) Owns(context.Context, string, string) (bool, error) { return true, nil }

func TestEngineContentionAfterRetriesExhausted(t *testing.T) {
	engine := NewEngine(contendedStore{}, allowAllAuthority{}, logging.Discard())
	engine.MaxAttempts = 3
	engine.RetryDelay = time.Millisecond

	_, err := engine.Deposit(context.Background(), DepositRequest{WalletID: "wallet-a", OwnerID: "user-1", Amount: 100})
	if !errors.Is(err, ErrContention) {
		t.Fatalf("expected contention, got %v", err)
	}
}
