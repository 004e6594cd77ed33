package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/naira-ledger/naira_ledger/internal/ledger"
	"github.com/naira-ledger/naira_ledger/internal/money"
)

// memoryRepository stores wallet rows in a ledger.MemoryWalletStore so the
// read path and the transaction engine share one backing map in tests and
// database-less dev mode.
type memoryRepository struct {
	store *ledger.MemoryWalletStore

	mu      sync.RWMutex
	created map[string]time.Time
}

// NewMemoryRepository constructs an in-memory repository over the given store.
func NewMemoryRepository(store *ledger.MemoryWalletStore) Repository {
	return &memoryRepository{store: store, created: make(map[string]time.Time)}
}

func (r *memoryRepository) Create(_ context.Context, wallet Wallet) error {
	if err := r.store.Put(ledger.Wallet{
		ID:      wallet.ID,
		OwnerID: wallet.OwnerID,
		Label:   wallet.Label,
		Balance: money.Money(wallet.Balance),
	}); err != nil {
		return err
	}
	r.mu.Lock()
	r.created[wallet.ID] = wallet.CreatedAt
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Wallet, error) {
	row, ok := r.store.Get(id)
	if !ok {
		return Wallet{}, ledger.ErrWalletNotFound
	}
	return r.toWallet(row), nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Wallet, error) {
	var wallets []Wallet
	for _, row := range r.store.List() {
		if row.OwnerID == ownerID {
			wallets = append(wallets, r.toWallet(row))
		}
	}
	return wallets, nil
}

func (r *memoryRepository) TotalBalance(_ context.Context, ownerID string) (int64, error) {
	var total int64
	for _, row := range r.store.List() {
		if row.OwnerID == ownerID {
			total += row.Balance.Int64()
		}
	}
	return total, nil
}

func (r *memoryRepository) toWallet(row ledger.Wallet) Wallet {
	r.mu.RLock()
	createdAt := r.created[row.ID]
	r.mu.RUnlock()
	return Wallet{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Label:     row.Label,
		Balance:   row.Balance.Int64(),
		CreatedAt: createdAt,
	}
}
