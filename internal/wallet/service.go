package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service exposes wallet lifecycle and read operations. Balance mutations are
// the transaction engine's job; this service only creates wallets and serves
// unlocked reads. It also acts as the engine's ownership authority.
type Service struct {
	repo Repository
}

// NewService builds a wallet service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	OwnerID        string
	Label          string
	InitialBalance int64
}

// Create provisions a wallet with balance zero or an initial funding amount.
func (s *Service) Create(ctx context.Context, input CreateInput) (Wallet, error) {
	if _, err := uuid.Parse(input.OwnerID); err != nil {
		return Wallet{}, err
	}
	if input.InitialBalance < 0 {
		return Wallet{}, errors.New("initial balance cannot be negative")
	}

	wallet := Wallet{
		ID:        uuid.New().String(),
		OwnerID:   input.OwnerID,
		Label:     input.Label,
		Balance:   input.InitialBalance,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, wallet); err != nil {
		return Wallet{}, err
	}
	return wallet, nil
}

// Get retrieves a wallet record.
func (s *Service) Get(ctx context.Context, id string) (Wallet, error) {
	return s.repo.Get(ctx, id)
}

// ListByOwner returns all wallets belonging to a user.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Balance returns an unlocked snapshot of a wallet's funds.
func (s *Service) Balance(ctx context.Context, id string) (Balance, error) {
	wallet, err := s.repo.Get(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletID: wallet.ID, Amount: wallet.Balance, AsOf: time.Now().UTC()}, nil
}

// TotalBalance sums a user's funds across all their wallets.
func (s *Service) TotalBalance(ctx context.Context, ownerID string) (int64, error) {
	return s.repo.TotalBalance(ctx, ownerID)
}

// Owns reports whether the wallet belongs to the given owner. It satisfies
// the transaction engine's OwnershipAuthority contract; a missing wallet
// propagates as ledger.ErrWalletNotFound from the repository.
func (s *Service) Owns(ctx context.Context, ownerID, walletID string) (bool, error) {
	wallet, err := s.repo.Get(ctx, walletID)
	if err != nil {
		return false, err
	}
	return wallet.OwnerID == ownerID, nil
}
