package redis

import (
	"context"
	"time"
)

// DemandStoreInterface defines the demand-signal operations.
type DemandStoreInterface interface {
	GetDemandContext(ctx context.Context, lat, lng float64) (int, int, error)
	AddAvailableDrivers(ctx context.Context, lat, lng float64, delta int) error
	AddPendingRequests(ctx context.Context, lat, lng float64, delta int) error
}

// LockStoreInterface defines the interface for distributed ride locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ DemandStoreInterface = (*DemandStore)(nil)
	_ LockStoreInterface   = (*LockStore)(nil)
)
