package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/naira-ledger/naira_ledger/internal/money"
)

// MemoryWalletStore is a concurrency-safe in-memory wallet store with the
// same locking contract as the Postgres implementation: exclusive per-wallet
// locks held until commit or rollback, bounded by a lock timeout. It backs
// unit tests and the database-less dev mode.
type MemoryWalletStore struct {
	mu          sync.Mutex
	wallets     map[string]Wallet
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewMemoryStore creates an empty in-memory wallet store.
func NewMemoryStore(lockTimeout time.Duration) *MemoryWalletStore {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &MemoryWalletStore{
		wallets:     make(map[string]Wallet),
		locks:       make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

// Put inserts a wallet row. Used by the wallet repository and by test seeding.
func (s *MemoryWalletStore) Put(wallet Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.wallets[wallet.ID]; exists {
		return errors.New("wallet exists")
	}
	s.wallets[wallet.ID] = wallet
	return nil
}

// Get returns an unlocked snapshot of a wallet row.
func (s *MemoryWalletStore) Get(id string) (Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, ok := s.wallets[id]
	return wallet, ok
}

// List returns unlocked snapshots of all wallet rows, ordered by id.
func (s *MemoryWalletStore) List() []Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Begin starts a unit of work with staged writes.
func (s *MemoryWalletStore) Begin(_ context.Context) (Tx, error) {
	return &memoryTx{
		store:  s,
		staged: make(map[string]money.Money),
	}, nil
}

func (s *MemoryWalletStore) lockChan(id string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

type memoryTx struct {
	store  *MemoryWalletStore
	held   []string
	staged map[string]money.Money
	done   bool
}

func (t *memoryTx) LockWallet(ctx context.Context, id string) (Wallet, error) {
	for _, heldID := range t.held {
		if heldID == id {
			return Wallet{}, fmt.Errorf("wallet %s already locked by this transaction", id)
		}
	}

	ch := t.store.lockChan(id)
	select {
	case ch <- struct{}{}:
	case <-time.After(t.store.lockTimeout):
		return Wallet{}, fmt.Errorf("%w: wallet %s", ErrLockNotAcquired, id)
	case <-ctx.Done():
		return Wallet{}, fmt.Errorf("%w: %w", ErrLockNotAcquired, ctx.Err())
	}

	t.store.mu.Lock()
	wallet, ok := t.store.wallets[id]
	t.store.mu.Unlock()
	if !ok {
		<-ch
		return Wallet{}, ErrWalletNotFound
	}

	t.held = append(t.held, id)
	return wallet, nil
}

func (t *memoryTx) UpdateBalance(_ context.Context, id string, balance money.Money) error {
	holds := false
	for _, heldID := range t.held {
		if heldID == id {
			holds = true
			break
		}
	}
	if !holds {
		return fmt.Errorf("wallet %s not locked by this transaction", id)
	}
	t.staged[id] = balance
	return nil
}

func (t *memoryTx) Commit(_ context.Context) error {
	if t.done {
		return errors.New("transaction already finished")
	}

	t.store.mu.Lock()
	for id, balance := range t.staged {
		wallet := t.store.wallets[id]
		wallet.Balance = balance
		t.store.wallets[id] = wallet
	}
	t.store.mu.Unlock()

	t.release()
	return nil
}

func (t *memoryTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *memoryTx) release() {
	t.store.mu.Lock()
	chans := make([]chan struct{}, 0, len(t.held))
	for _, id := range t.held {
		chans = append(chans, t.store.locks[id])
	}
	t.store.mu.Unlock()

	for _, ch := range chans {
		<-ch
	}
	t.held = nil
	t.done = true
}
