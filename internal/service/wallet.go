package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"farebroker/internal/domain"
	"farebroker/internal/observability"
	"farebroker/internal/repository"
)

// WalletLedger maintains per-user balances with an append-only transaction
// log. Mutations are serialized per user; a balance write and its transaction
// append are one atomic repository call.
type WalletLedger struct {
	repo     repository.WalletRepository
	currency string
	locks    keyedMutex
	log      *logrus.Logger
}

// NewWalletLedger creates a WalletLedger.
func NewWalletLedger(repo repository.WalletRepository, currency string, log *logrus.Logger) *WalletLedger {
	if currency == "" {
		currency = "USD"
	}
	if log == nil {
		log = logrus.New()
	}
	return &WalletLedger{repo: repo, currency: currency, log: log}
}

// Debit charges a ride payment against the user's balance. It fails with
// ErrInsufficientFunds when amount exceeds the balance; no partial debits, no
// overdraft, and no transaction is recorded on failure.
func (l *WalletLedger) Debit(ctx context.Context, userID string, amount float64, reference, description string) (*domain.WalletTransaction, error) {
	return l.apply(ctx, userID, domain.TransactionTypeRidePayment, amount, reference, description)
}

// Credit adds funds to the user's balance.
func (l *WalletLedger) Credit(ctx context.Context, userID string, amount float64, reference, description string) (*domain.WalletTransaction, error) {
	return l.apply(ctx, userID, domain.TransactionTypeTopup, amount, reference, description)
}

// Refund is a credit tagged with the refund type and a reference back to the
// originating ride.
func (l *WalletLedger) Refund(ctx context.Context, userID string, amount float64, rideID, description string) (*domain.WalletTransaction, error) {
	return l.apply(ctx, userID, domain.TransactionTypeRefund, amount, rideID, description)
}

// Withdraw removes funds from the user's balance, subject to the same
// no-overdraft rule as Debit.
func (l *WalletLedger) Withdraw(ctx context.Context, userID string, amount float64, reference, description string) (*domain.WalletTransaction, error) {
	return l.apply(ctx, userID, domain.TransactionTypeWithdrawal, amount, reference, description)
}

// Wallet returns the user's wallet, creating it on first use.
func (l *WalletLedger) Wallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return l.repo.GetOrCreate(ctx, userID, l.currency)
}

// Transactions returns the user's transaction log, newest first.
func (l *WalletLedger) Transactions(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if limit <= 0 {
		limit = 100
	}
	return l.repo.Transactions(ctx, userID, limit)
}

func (l *WalletLedger) apply(ctx context.Context, userID string, txnType domain.TransactionType, amount float64, reference, description string) (*domain.WalletTransaction, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	unlock := l.locks.Lock("wallet:" + userID)
	defer unlock()

	wallet, err := l.repo.GetOrCreate(ctx, userID, l.currency)
	if err != nil {
		return nil, err
	}

	txn := &domain.WalletTransaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        txnType,
		Amount:      round2(amount),
		Reference:   reference,
		Description: description,
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   time.Now(),
	}

	newBalance := round2(wallet.Balance + txn.Signed())
	if newBalance < 0 {
		return nil, ErrInsufficientFunds
	}

	wallet.Balance = newBalance
	txn.BalanceAfter = newBalance

	if err := l.repo.Apply(ctx, wallet, txn); err != nil {
		return nil, err
	}

	observability.WalletTransactionsTotal.WithLabelValues(string(txnType)).Inc()
	l.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"type":      txnType,
		"amount":    txn.Amount,
		"balance":   newBalance,
		"reference": reference,
	}).Info("wallet transaction applied")

	return txn, nil
}

// VerifyLedger replays a transaction log (oldest first) and checks that every
// BalanceAfter snapshot matches the running sum and that the final balance
// matches the wallet. It returns the first mismatch found.
func VerifyLedger(wallet *domain.Wallet, txns []*domain.WalletTransaction) error {
	var running float64
	for i, txn := range txns {
		running = round2(running + txn.Signed())
		if running != txn.BalanceAfter {
			return fmt.Errorf("ledger mismatch at entry %d (%s): running %.2f, recorded %.2f", i, txn.ID, running, txn.BalanceAfter)
		}
	}
	if running != wallet.Balance {
		return fmt.Errorf("ledger sum %.2f does not match wallet balance %.2f", running, wallet.Balance)
	}
	return nil
}
