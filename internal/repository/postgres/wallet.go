package postgres

import (
	"context"
	"database/sql"

	"farebroker/internal/domain"
)

// WalletRepository is a PostgreSQL implementation of
// repository.WalletRepository. Apply runs the balance write and the
// transaction append inside one database transaction.
type WalletRepository struct {
	db *sql.DB
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID, currency string) (*domain.Wallet, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, currency)
		VALUES ($1, 0, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, currency)
	if err != nil {
		return nil, err
	}

	var wallet domain.Wallet
	err = r.db.QueryRowContext(ctx, `
		SELECT user_id, balance, currency FROM wallets WHERE user_id = $1
	`, userID).Scan(&wallet.UserID, &wallet.Balance, &wallet.Currency)
	if err != nil {
		return nil, err
	}

	return &wallet, nil
}

// Apply persists the new balance and appends the transaction atomically.
func (r *WalletRepository) Apply(ctx context.Context, wallet *domain.Wallet, txn *domain.WalletTransaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// balance >= 0 is also enforced by a table CHECK constraint
	if _, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance = $1 WHERE user_id = $2
	`, wallet.Balance, wallet.UserID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, type, amount, reference, description, status, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, txn.ID, txn.UserID, txn.Type, txn.Amount, nullString(txn.Reference), nullString(txn.Description), txn.Status, txn.BalanceAfter, txn.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// Transactions returns the user's transaction log, newest first.
func (r *WalletRepository) Transactions(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount, reference, description, status, balance_after, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.WalletTransaction
	for rows.Next() {
		var txn domain.WalletTransaction
		var reference, description sql.NullString
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Type,
			&txn.Amount,
			&reference,
			&description,
			&txn.Status,
			&txn.BalanceAfter,
			&txn.CreatedAt,
		); err != nil {
			return nil, err
		}
		txn.Reference = reference.String
		txn.Description = description.String
		txns = append(txns, &txn)
	}
	return txns, rows.Err()
}
