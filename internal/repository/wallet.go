package repository

import (
	"context"

	"farebroker/internal/domain"
)

// WalletRepository defines the persistence operations for wallets and their
// append-only transaction logs.
type WalletRepository interface {
	// GetOrCreate returns the user's wallet, creating an empty one in the
	// given currency on first use.
	GetOrCreate(ctx context.Context, userID, currency string) (*domain.Wallet, error)

	// Apply persists the new balance and appends the transaction as one
	// atomic unit.
	Apply(ctx context.Context, wallet *domain.Wallet, txn *domain.WalletTransaction) error

	// Transactions returns the user's transaction log, newest first.
	Transactions(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error)
}
