package repository

import (
	"context"

	"farebroker/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// Update persists an existing ride guarded by its version; it returns
	// ErrVersionConflict when a concurrent writer got there first, and bumps
	// ride.Version on success.
	Update(ctx context.Context, ride *domain.Ride) error
}
