package domain

import "time"

// TransactionType represents the type of a wallet transaction.
type TransactionType string

const (
	TransactionTypeTopup       TransactionType = "TOPUP"
	TransactionTypeRidePayment TransactionType = "RIDE_PAYMENT"
	TransactionTypeRefund      TransactionType = "REFUND"
	TransactionTypeWithdrawal  TransactionType = "WITHDRAWAL"
)

// TransactionStatus represents the status of a wallet transaction.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Wallet holds the cached balance for one user. The balance always equals the
// signed sum of the user's completed transactions and is never negative.
type Wallet struct {
	UserID   string
	Balance  float64
	Currency string
}

// WalletTransaction is one entry in a user's append-only transaction log.
// Amount is always positive; the sign is implied by Type (topups and refunds
// credit, ride payments and withdrawals debit). BalanceAfter snapshots the
// wallet balance immediately after the entry, enabling replay verification.
type WalletTransaction struct {
	ID           string
	UserID       string
	Type         TransactionType
	Amount       float64
	Reference    string // originating ride, topup or withdrawal id
	Description  string
	Status       TransactionStatus
	BalanceAfter float64
	CreatedAt    time.Time
}

// Signed returns the transaction amount with its ledger sign applied.
func (t *WalletTransaction) Signed() float64 {
	switch t.Type {
	case TransactionTypeRidePayment, TransactionTypeWithdrawal:
		return -t.Amount
	default:
		return t.Amount
	}
}
