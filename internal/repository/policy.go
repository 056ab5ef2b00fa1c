package repository

import (
	"context"

	"farebroker/internal/domain"
)

// PolicyRepository defines the persistence operations for cancellation
// policies. Policies are read at cancellation time and never mutated there.
type PolicyRepository interface {
	// GetActive returns the single active policy, or ErrNotFound.
	GetActive(ctx context.Context) (*domain.CancellationPolicy, error)

	// Save persists a policy version; saving an active policy deactivates
	// every other version.
	Save(ctx context.Context, policy *domain.CancellationPolicy) error
}
