package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naira-ledger/naira_ledger/internal/ledger"
)

// Repository persists wallet records. Reads here take no row locks.
type Repository interface {
	Create(ctx context.Context, wallet Wallet) error
	Get(ctx context.Context, id string) (Wallet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error)
	TotalBalance(ctx context.Context, ownerID string) (int64, error)
}

// PostgresRepository stores wallets in PostgreSQL, in the same table the
// transaction engine's wallet store locks and mutates.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a wallet record with its initial balance.
func (r *PostgresRepository) Create(ctx context.Context, wallet Wallet) error {
	walletID, err := uuid.Parse(wallet.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(wallet.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, label, balance, created_at)
        VALUES ($1, $2, $3, $4, $5)`, walletID, ownerID, wallet.Label, wallet.Balance, wallet.CreatedAt.UTC())
	return err
}

// Get fetches a wallet by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Wallet, error) {
	walletUUID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ledger.ErrWalletNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, label, balance, created_at
        FROM wallets WHERE id = $1`, walletUUID)
	return scanWallet(row)
}

// ListByOwner returns every wallet belonging to a user.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, label, balance, created_at
        FROM wallets WHERE owner_id = $1 ORDER BY created_at`, ownerUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// TotalBalance sums the balances across all of a user's wallets.
func (r *PostgresRepository) TotalBalance(ctx context.Context, ownerID string) (int64, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM wallets WHERE owner_id = $1`, ownerUUID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		idVal     uuid.UUID
		ownerID   uuid.UUID
		createdAt time.Time
		w         Wallet
	)
	if err := row.Scan(&idVal, &ownerID, &w.Label, &w.Balance, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ledger.ErrWalletNotFound
		}
		return Wallet{}, err
	}
	w.ID = idVal.String()
	w.OwnerID = ownerID.String()
	w.CreatedAt = createdAt.UTC()
	return w, nil
}
