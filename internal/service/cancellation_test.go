package service

import (
	"testing"

	"farebroker/internal/domain"
)

func standardPolicy() *domain.CancellationPolicy {
	return &domain.CancellationPolicy{
		ID:                     "policy-1",
		Name:                   "standard",
		Version:                3,
		IsActive:               true,
		FreeCancellationWindow: 2,
		MaxFeePercent:          50,
		Rules: []domain.CancellationRule{
			{ThresholdMinutes: 0, FeeKind: domain.FeeKindPercentage, FeeAmount: 10, AppliesTo: domain.AppliesToPassenger},
		},
	}
}

func TestCancellationCharges_PercentageFee(t *testing.T) {
	t.Parallel()

	// 3 minutes after acceptance on a 134 fare: past the 2 minute free
	// window, the 10% rule applies.
	charges := CalculateCancellationCharges(standardPolicy(), 134, 3, domain.CancelledByPassenger)

	if charges.Fee != 13.4 {
		t.Errorf("expected fee 13.40, got %.2f", charges.Fee)
	}
	if charges.Refund != 120.6 {
		t.Errorf("expected refund 120.60, got %.2f", charges.Refund)
	}
	if charges.PenaltyApplied {
		t.Error("expected no penalty")
	}
}

func TestCancellationCharges_FreeWindow(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()

	// Exactly at the window boundary is still free.
	for _, elapsed := range []float64{0, 1, 2} {
		charges := CalculateCancellationCharges(policy, 134, elapsed, domain.CancelledByPassenger)
		if charges.Fee != 0 {
			t.Errorf("elapsed %.0f: expected no fee inside free window, got %.2f", elapsed, charges.Fee)
		}
		if charges.Refund != 134 {
			t.Errorf("elapsed %.0f: expected full refund, got %.2f", elapsed, charges.Refund)
		}
	}
}

func TestCancellationCharges_LatestRuleWins(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()
	policy.Rules = []domain.CancellationRule{
		{ThresholdMinutes: 0, FeeKind: domain.FeeKindPercentage, FeeAmount: 5, AppliesTo: domain.AppliesToBoth},
		{ThresholdMinutes: 5, FeeKind: domain.FeeKindPercentage, FeeAmount: 25, AppliesTo: domain.AppliesToBoth},
	}

	early := CalculateCancellationCharges(policy, 100, 4, domain.CancelledByPassenger)
	if early.Fee != 5 {
		t.Errorf("expected 5%% rule at 4 minutes, got fee %.2f", early.Fee)
	}

	late := CalculateCancellationCharges(policy, 100, 6, domain.CancelledByPassenger)
	if late.Fee != 25 {
		t.Errorf("expected 25%% rule at 6 minutes, got fee %.2f", late.Fee)
	}
}

func TestCancellationCharges_RuleScopedToOtherParty(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()
	policy.Rules = []domain.CancellationRule{
		{ThresholdMinutes: 0, FeeKind: domain.FeeKindPercentage, FeeAmount: 10, AppliesTo: domain.AppliesToDriver},
	}

	charges := CalculateCancellationCharges(policy, 100, 10, domain.CancelledByPassenger)
	if charges.Fee != 0 {
		t.Errorf("expected no fee for passenger under a driver-only rule, got %.2f", charges.Fee)
	}
	if charges.Refund != 100 {
		t.Errorf("expected full refund, got %.2f", charges.Refund)
	}
}

func TestCancellationCharges_SystemCancellationIsFree(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()
	policy.Rules[0].AppliesTo = domain.AppliesToBoth

	for _, by := range []domain.CancelledBy{domain.CancelledBySystem, domain.CancelledByAdmin} {
		charges := CalculateCancellationCharges(policy, 100, 10, by)
		if charges.Fee != 0 || charges.Refund != 100 {
			t.Errorf("%s: expected free cancellation, got fee %.2f refund %.2f", by, charges.Fee, charges.Refund)
		}
	}
}

func TestCancellationCharges_MaxFeePercentCap(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()
	policy.Rules[0].FeeAmount = 80

	charges := CalculateCancellationCharges(policy, 100, 10, domain.CancelledByPassenger)
	if charges.Fee != 50 {
		t.Errorf("expected fee capped at 50%% of fare, got %.2f", charges.Fee)
	}
	if charges.Refund != 50 {
		t.Errorf("expected refund 50, got %.2f", charges.Refund)
	}
}

func TestCancellationCharges_FixedFeeNeverExceedsFare(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()
	policy.Rules = []domain.CancellationRule{
		{ThresholdMinutes: 0, FeeKind: domain.FeeKindFixed, FeeAmount: 200, AppliesTo: domain.AppliesToPassenger},
	}

	charges := CalculateCancellationCharges(policy, 100, 10, domain.CancelledByPassenger)
	if charges.Fee != 100 {
		t.Errorf("expected fixed fee clamped to fare, got %.2f", charges.Fee)
	}
	if charges.Refund != 0 {
		t.Errorf("expected no refund, got %.2f", charges.Refund)
	}
}

func TestCancellationCharges_NoShowPenaltyStacks(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()
	policy.NoShowPenalties = map[domain.CancelledBy]domain.NoShowPenalty{
		domain.CancelledByPassenger: {AppliesAfterMinutes: 5, Kind: domain.FeeKindFixed, Amount: 20},
	}

	// 10 minutes in: 10% fee plus the no-show penalty on top.
	charges := CalculateCancellationCharges(policy, 100, 10, domain.CancelledByPassenger)
	if charges.Fee != 10 {
		t.Errorf("expected fee 10, got %.2f", charges.Fee)
	}
	if !charges.PenaltyApplied || charges.PenaltyAmount != 20 {
		t.Errorf("expected 20 penalty, got applied=%v amount=%.2f", charges.PenaltyApplied, charges.PenaltyAmount)
	}
	if charges.Refund != 70 {
		t.Errorf("expected refund 70, got %.2f", charges.Refund)
	}

	// 4 minutes in the penalty has not kicked in yet.
	early := CalculateCancellationCharges(policy, 100, 4, domain.CancelledByPassenger)
	if early.PenaltyApplied {
		t.Error("expected no penalty before its threshold")
	}
}

func TestCancellationCharges_RefundNeverNegative(t *testing.T) {
	t.Parallel()

	policy := standardPolicy()
	policy.Rules[0].FeeAmount = 50
	policy.MaxFeePercent = 100
	policy.NoShowPenalties = map[domain.CancelledBy]domain.NoShowPenalty{
		domain.CancelledByPassenger: {AppliesAfterMinutes: 5, Kind: domain.FeeKindPercentage, Amount: 80},
	}

	charges := CalculateCancellationCharges(policy, 100, 10, domain.CancelledByPassenger)
	if charges.Refund != 0 {
		t.Errorf("expected refund floored at zero, got %.2f", charges.Refund)
	}
}

func TestCancellationCharges_NegativeFareTreatedAsZero(t *testing.T) {
	t.Parallel()

	charges := CalculateCancellationCharges(standardPolicy(), -10, 10, domain.CancelledByPassenger)
	if charges.Fee != 0 || charges.Refund != 0 {
		t.Errorf("expected zero charges on negative fare, got fee %.2f refund %.2f", charges.Fee, charges.Refund)
	}
}
