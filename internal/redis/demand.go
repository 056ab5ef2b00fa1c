package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"
)

// geohash precision 5 is roughly a 5km cell, the radius surge cares about
const demandCellPrecision = 5

// Counters expire so stale areas decay to "no signal" rather than lingering.
const demandTTL = 10 * time.Minute

// DemandStore keeps per-area supply/demand counters in Redis, keyed by
// geohash cell. It backs the demand signal consumed by surge pricing.
type DemandStore struct {
	client *redis.Client
}

// NewDemandStore creates a new DemandStore.
func NewDemandStore(client *redis.Client) *DemandStore {
	return &DemandStore{client: client}
}

// GetDemandContext returns the available-driver and pending-request counts
// for the cell containing the given point.
func (s *DemandStore) GetDemandContext(ctx context.Context, lat, lng float64) (int, int, error) {
	cell := geohash.EncodeWithPrecision(lat, lng, demandCellPrecision)

	pipe := s.client.Pipeline()
	driversCmd := pipe.Get(ctx, driversKey(cell))
	requestsCmd := pipe.Get(ctx, requestsKey(cell))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, 0, err
	}

	drivers, _ := driversCmd.Int()
	requests, _ := requestsCmd.Int()
	if drivers < 0 {
		drivers = 0
	}
	if requests < 0 {
		requests = 0
	}
	return drivers, requests, nil
}

// AddAvailableDrivers adjusts the available-driver count for the point's cell.
func (s *DemandStore) AddAvailableDrivers(ctx context.Context, lat, lng float64, delta int) error {
	return s.add(ctx, driversKey(geohash.EncodeWithPrecision(lat, lng, demandCellPrecision)), delta)
}

// AddPendingRequests adjusts the pending-request count for the point's cell.
func (s *DemandStore) AddPendingRequests(ctx context.Context, lat, lng float64, delta int) error {
	return s.add(ctx, requestsKey(geohash.EncodeWithPrecision(lat, lng, demandCellPrecision)), delta)
}

func (s *DemandStore) add(ctx context.Context, key string, delta int) error {
	pipe := s.client.Pipeline()
	pipe.IncrBy(ctx, key, int64(delta))
	pipe.Expire(ctx, key, demandTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func driversKey(cell string) string {
	return fmt.Sprintf("demand:drivers:%s", cell)
}

func requestsKey(cell string) string {
	return fmt.Sprintf("demand:requests:%s", cell)
}
