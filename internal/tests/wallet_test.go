package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"farebroker/internal/domain"
	"farebroker/internal/service"
)

// ──────────────────────────────────────────────
// WALLET LEDGER
// ──────────────────────────────────────────────

func newLedger() (*service.WalletLedger, *MockWalletRepository) {
	repo := NewMockWalletRepository()
	return service.NewWalletLedger(repo, "USD", nil), repo
}

func TestWallet_DebitInsufficientFunds(t *testing.T) {
	t.Parallel()

	ledger, repo := newLedger()
	repo.SetBalance("user-1", 100)

	_, err := ledger.Debit(context.Background(), "user-1", 150, "ride-1", "ride payment")
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// No partial debit, no transaction.
	wallet, _ := repo.GetOrCreate(context.Background(), "user-1", "USD")
	if wallet.Balance != 100 {
		t.Errorf("expected balance unchanged at 100, got %.2f", wallet.Balance)
	}
	if repo.CountTransactions("user-1") != 0 {
		t.Errorf("expected no transactions, got %d", repo.CountTransactions("user-1"))
	}
}

func TestWallet_BalanceEqualsSignedSum(t *testing.T) {
	t.Parallel()

	ledger, _ := newLedger()
	ctx := context.Background()

	ops := []struct {
		run    func() (*domain.WalletTransaction, error)
		amount float64
	}{
		{func() (*domain.WalletTransaction, error) { return ledger.Credit(ctx, "user-1", 200, "topup-1", "") }, 200},
		{func() (*domain.WalletTransaction, error) { return ledger.Debit(ctx, "user-1", 134, "ride-1", "") }, -134},
		{func() (*domain.WalletTransaction, error) { return ledger.Refund(ctx, "user-1", 120.6, "ride-1", "") }, 120.6},
		{func() (*domain.WalletTransaction, error) { return ledger.Withdraw(ctx, "user-1", 50, "wd-1", "") }, -50},
	}

	want := 0.0
	for i, op := range ops {
		txn, err := op.run()
		if err != nil {
			t.Fatalf("op %d: unexpected error: %v", i, err)
		}
		want += op.amount
		if txn.BalanceAfter != want {
			t.Errorf("op %d: expected balance after %.2f, got %.2f", i, want, txn.BalanceAfter)
		}
	}

	wallet, err := ledger.Wallet(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 136.6 {
		t.Errorf("expected final balance 136.60, got %.2f", wallet.Balance)
	}

	// The full log replays cleanly. Transactions come back newest first.
	txns, err := ledger.Transactions(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(txns))
	}
	oldestFirst := make([]*domain.WalletTransaction, len(txns))
	for i, txn := range txns {
		oldestFirst[len(txns)-1-i] = txn
	}
	if err := service.VerifyLedger(wallet, oldestFirst); err != nil {
		t.Errorf("ledger verification failed: %v", err)
	}
}

func TestWallet_InvalidAmounts(t *testing.T) {
	t.Parallel()

	ledger, _ := newLedger()
	ctx := context.Background()

	for _, amount := range []float64{0, -10} {
		if _, err := ledger.Credit(ctx, "user-1", amount, "", ""); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("credit %.0f: expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := ledger.Debit(ctx, "user-1", amount, "", ""); !errors.Is(err, service.ErrInvalidAmount) {
			t.Errorf("debit %.0f: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	if _, err := ledger.Credit(ctx, "", 10, "", ""); !errors.Is(err, service.ErrInvalidUserID) {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestWallet_WithdrawCannotOverdraw(t *testing.T) {
	t.Parallel()

	ledger, repo := newLedger()
	repo.SetBalance("user-1", 30)

	_, err := ledger.Withdraw(context.Background(), "user-1", 31, "wd-1", "")
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestWallet_ConcurrentCredits(t *testing.T) {
	t.Parallel()

	ledger, _ := newLedger()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Credit(ctx, "user-1", 10, "topup", ""); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	wallet, err := ledger.Wallet(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.Balance != 500 {
		t.Errorf("expected balance 500 after 50 credits, got %.2f", wallet.Balance)
	}
}

func TestVerifyLedger_DetectsCorruption(t *testing.T) {
	t.Parallel()

	ledger, repo := newLedger()
	ctx := context.Background()

	if _, err := ledger.Credit(ctx, "user-1", 100, "topup-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ledger.Debit(ctx, "user-1", 40, "ride-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wallet, _ := repo.GetOrCreate(ctx, "user-1", "USD")
	txns, _ := repo.Transactions(ctx, "user-1", 10)
	oldestFirst := []*domain.WalletTransaction{txns[1], txns[0]}

	if err := service.VerifyLedger(wallet, oldestFirst); err != nil {
		t.Fatalf("expected clean ledger, got %v", err)
	}

	// Tamper with a snapshot.
	oldestFirst[1].BalanceAfter = 99
	if err := service.VerifyLedger(wallet, oldestFirst); err == nil {
		t.Error("expected verification to fail on a corrupted snapshot")
	}

	// A wallet balance that disagrees with the log is also caught.
	wallet.Balance = 1234
	oldestFirst[1].BalanceAfter = 60
	if err := service.VerifyLedger(wallet, oldestFirst); err == nil {
		t.Error("expected verification to fail on a balance mismatch")
	}
}
