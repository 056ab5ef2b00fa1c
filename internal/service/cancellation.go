package service

import (
	"farebroker/internal/domain"
)

// CalculateCancellationCharges computes the fee/refund/penalty split for a
// cancellation under the given policy. It is a pure function over its inputs;
// the refund is always within [0, fare].
func CalculateCancellationCharges(policy *domain.CancellationPolicy, fare, elapsedMinutes float64, cancelledBy domain.CancelledBy) domain.CancellationCharges {
	if fare < 0 {
		fare = 0
	}

	// Inside the free window cancellation is costless to all parties.
	if elapsedMinutes <= policy.FreeCancellationWindow {
		return domain.CancellationCharges{Fee: 0, Refund: fare}
	}

	rule, found := selectRule(policy.Rules, elapsedMinutes)
	if !found || !rule.AppliesTo.Matches(cancelledBy) {
		// No applicable rule for this party: treat as free cancellation,
		// apart from any no-show penalty below.
		return applyNoShowPenalty(policy, fare, elapsedMinutes, cancelledBy, domain.CancellationCharges{Fee: 0, Refund: fare})
	}

	var fee float64
	switch rule.FeeKind {
	case domain.FeeKindPercentage:
		fee = fare * rule.FeeAmount / 100
		if policy.MaxFeePercent > 0 {
			if cap := fare * policy.MaxFeePercent / 100; fee > cap {
				fee = cap
			}
		}
	default:
		fee = rule.FeeAmount
		if fee > fare {
			fee = fare
		}
	}
	fee = round2(fee)

	charges := domain.CancellationCharges{
		Fee:    fee,
		Refund: round2(fare - fee),
	}

	return applyNoShowPenalty(policy, fare, elapsedMinutes, cancelledBy, charges)
}

// selectRule picks the rule with the largest threshold not exceeding the
// elapsed time, i.e. the latest applicable rule.
func selectRule(rules []domain.CancellationRule, elapsedMinutes float64) (domain.CancellationRule, bool) {
	var best domain.CancellationRule
	found := false
	for _, r := range rules {
		if r.ThresholdMinutes > elapsedMinutes {
			continue
		}
		if !found || r.ThresholdMinutes >= best.ThresholdMinutes {
			best = r
			found = true
		}
	}
	return best, found
}

// applyNoShowPenalty adds the role-specific no-show penalty on top of the
// ordinary fee and subtracts it from the refund, floored at zero. Fee and
// penalty stack deliberately.
func applyNoShowPenalty(policy *domain.CancellationPolicy, fare, elapsedMinutes float64, cancelledBy domain.CancelledBy, charges domain.CancellationCharges) domain.CancellationCharges {
	cfg, ok := policy.NoShowPenalties[cancelledBy]
	if !ok || elapsedMinutes <= cfg.AppliesAfterMinutes {
		return clampRefund(charges, fare)
	}

	penalty := cfg.Amount
	if cfg.Kind == domain.FeeKindPercentage {
		penalty = fare * cfg.Amount / 100
	}
	penalty = round2(penalty)

	charges.PenaltyApplied = true
	charges.PenaltyAmount = penalty
	charges.Refund = round2(charges.Refund - penalty)

	return clampRefund(charges, fare)
}

func clampRefund(charges domain.CancellationCharges, fare float64) domain.CancellationCharges {
	if charges.Refund < 0 {
		charges.Refund = 0
	}
	if charges.Refund > fare {
		charges.Refund = fare
	}
	return charges
}
