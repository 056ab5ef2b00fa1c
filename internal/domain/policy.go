package domain

import "time"

// FeeKind distinguishes fixed-amount fees from percentage-of-fare fees.
type FeeKind string

const (
	FeeKindFixed      FeeKind = "FIXED"
	FeeKindPercentage FeeKind = "PERCENTAGE"
)

// AppliesTo restricts a cancellation rule to the party that cancelled.
type AppliesTo string

const (
	AppliesToPassenger AppliesTo = "PASSENGER"
	AppliesToDriver    AppliesTo = "DRIVER"
	AppliesToBoth      AppliesTo = "BOTH"
)

// Matches reports whether a rule scoped to a applies to the given canceller.
// System and admin cancellations are never charged through rules.
func (a AppliesTo) Matches(by CancelledBy) bool {
	switch a {
	case AppliesToBoth:
		return by == CancelledByPassenger || by == CancelledByDriver
	case AppliesToPassenger:
		return by == CancelledByPassenger
	case AppliesToDriver:
		return by == CancelledByDriver
	default:
		return false
	}
}

// CancellationRule is one time-threshold rule in a policy. The rule with the
// largest ThresholdMinutes not exceeding the elapsed time is the one applied.
type CancellationRule struct {
	ThresholdMinutes float64   `json:"threshold_minutes"`
	FeeKind          FeeKind   `json:"fee_kind"`
	FeeAmount        float64   `json:"fee_amount"` // percentage of fare or fixed amount, per FeeKind
	AppliesTo        AppliesTo `json:"applies_to"`
	// RefundPercent is carried on stored policy documents; charge calculation
	// derives the refund from the fee instead.
	RefundPercent float64 `json:"refund_percent"`
}

// NoShowPenalty configures the additional no-show charge for one role.
type NoShowPenalty struct {
	AppliesAfterMinutes float64 `json:"applies_after_minutes"`
	Kind                FeeKind `json:"kind"`
	Amount              float64 `json:"amount"`
}

// CancellationPolicy is a named, versioned rule set. Exactly one policy is
// active at a time; it is looked up, never mutated, at cancellation time, and
// the version used is recorded on the ride.
type CancellationPolicy struct {
	ID                     string
	Name                   string
	Version                int
	IsActive               bool
	FreeCancellationWindow float64 // minutes after acceptance with no charge
	Rules                  []CancellationRule
	NoShowPenalties        map[CancelledBy]NoShowPenalty
	MaxFeePercent          float64 // cap on the cancellation fee, as % of fare
	CreatedAt              time.Time
}

// CancellationCharges is the fee/refund split computed for one cancellation.
type CancellationCharges struct {
	Fee            float64
	Refund         float64
	PenaltyApplied bool
	PenaltyAmount  float64
}
