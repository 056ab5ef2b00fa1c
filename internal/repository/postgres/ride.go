package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"farebroker/internal/domain"
	"farebroker/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `
	id, passenger_id, driver_id,
	pickup_address, pickup_lat, pickup_lng,
	destination_address, destination_lat, destination_lng,
	vehicle_class, status,
	distance_km, duration_min, base_fare, distance_fare, time_fare,
	surge_multiplier, time_multiplier, total_fare, fare_currency,
	payment_method, payment_status, payment_amount, payment_currency, gateway_ref,
	cancelled_by, cancel_reason, cancel_fee, cancel_refund,
	penalty_applied, penalty_amount, policy_version, refund_processed,
	requested_at, accepted_at, en_route_at, arrived_at, started_at, completed_at, cancelled_at,
	version`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		        $31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41)
	`

	ride.Version = 1

	args := []any{
		ride.ID,
		ride.PassengerID,
		nullString(ride.DriverID),
		ride.Pickup.Address,
		ride.Pickup.Lat,
		ride.Pickup.Lng,
		ride.Destination.Address,
		ride.Destination.Lat,
		ride.Destination.Lng,
		ride.VehicleClass,
		ride.Status,
		ride.Pricing.DistanceKm,
		ride.Pricing.DurationMin,
		ride.Pricing.BaseFare,
		ride.Pricing.DistanceFare,
		ride.Pricing.TimeFare,
		ride.Pricing.SurgeMultiplier,
		ride.Pricing.TimeMultiplier,
		ride.Pricing.TotalFare,
		ride.Pricing.Currency,
		ride.Payment.Method,
		ride.Payment.Status,
		ride.Payment.Amount,
		ride.Payment.Currency,
		nullString(ride.Payment.GatewayRef),
	}
	args = append(args, cancellationArgs(ride.Cancellation)...)
	args = append(args,
		nullTime(ride.Timestamps.Requested),
		nullTime(ride.Timestamps.Accepted),
		nullTime(ride.Timestamps.EnRoute),
		nullTime(ride.Timestamps.Arrived),
		nullTime(ride.Timestamps.Started),
		nullTime(ride.Timestamps.Completed),
		nullTime(ride.Timestamps.Cancelled),
		ride.Version,
	)

	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	row := r.q.QueryRowContext(ctx, query, id)
	ride, err := scanRide(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// Update persists an existing ride guarded by its version.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides SET
			driver_id = $1, status = $2,
			distance_km = $3, duration_min = $4, base_fare = $5, distance_fare = $6, time_fare = $7,
			surge_multiplier = $8, time_multiplier = $9, total_fare = $10, fare_currency = $11,
			payment_method = $12, payment_status = $13, payment_amount = $14, payment_currency = $15, gateway_ref = $16,
			cancelled_by = $17, cancel_reason = $18, cancel_fee = $19, cancel_refund = $20,
			penalty_applied = $21, penalty_amount = $22, policy_version = $23, refund_processed = $24,
			accepted_at = $25, en_route_at = $26, arrived_at = $27, started_at = $28, completed_at = $29, cancelled_at = $30,
			version = version + 1
		WHERE id = $31 AND version = $32
	`

	args := []any{
		nullString(ride.DriverID),
		ride.Status,
		ride.Pricing.DistanceKm,
		ride.Pricing.DurationMin,
		ride.Pricing.BaseFare,
		ride.Pricing.DistanceFare,
		ride.Pricing.TimeFare,
		ride.Pricing.SurgeMultiplier,
		ride.Pricing.TimeMultiplier,
		ride.Pricing.TotalFare,
		ride.Pricing.Currency,
		ride.Payment.Method,
		ride.Payment.Status,
		ride.Payment.Amount,
		ride.Payment.Currency,
		nullString(ride.Payment.GatewayRef),
	}
	args = append(args, cancellationArgs(ride.Cancellation)...)
	args = append(args,
		nullTime(ride.Timestamps.Accepted),
		nullTime(ride.Timestamps.EnRoute),
		nullTime(ride.Timestamps.Arrived),
		nullTime(ride.Timestamps.Started),
		nullTime(ride.Timestamps.Completed),
		nullTime(ride.Timestamps.Cancelled),
		ride.ID,
		ride.Version,
	)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrVersionConflict
	}

	ride.Version++
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, gatewayRef, cancelledBy, cancelReason sql.NullString
	var cancelFee, cancelRefund, penaltyAmount sql.NullFloat64
	var penaltyApplied, refundProcessed sql.NullBool
	var policyVersion sql.NullInt64
	var requestedAt, acceptedAt, enRouteAt, arrivedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.PassengerID,
		&driverID,
		&ride.Pickup.Address,
		&ride.Pickup.Lat,
		&ride.Pickup.Lng,
		&ride.Destination.Address,
		&ride.Destination.Lat,
		&ride.Destination.Lng,
		&ride.VehicleClass,
		&ride.Status,
		&ride.Pricing.DistanceKm,
		&ride.Pricing.DurationMin,
		&ride.Pricing.BaseFare,
		&ride.Pricing.DistanceFare,
		&ride.Pricing.TimeFare,
		&ride.Pricing.SurgeMultiplier,
		&ride.Pricing.TimeMultiplier,
		&ride.Pricing.TotalFare,
		&ride.Pricing.Currency,
		&ride.Payment.Method,
		&ride.Payment.Status,
		&ride.Payment.Amount,
		&ride.Payment.Currency,
		&gatewayRef,
		&cancelledBy,
		&cancelReason,
		&cancelFee,
		&cancelRefund,
		&penaltyApplied,
		&penaltyAmount,
		&policyVersion,
		&refundProcessed,
		&requestedAt,
		&acceptedAt,
		&enRouteAt,
		&arrivedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
		&ride.Version,
	)
	if err != nil {
		return nil, err
	}

	ride.Pricing.VehicleClass = ride.VehicleClass
	ride.DriverID = driverID.String
	ride.Payment.GatewayRef = gatewayRef.String

	if cancelledBy.Valid {
		ride.Cancellation = &domain.CancellationRecord{
			CancelledBy:     domain.CancelledBy(cancelledBy.String),
			Reason:          cancelReason.String,
			Fee:             cancelFee.Float64,
			RefundAmount:    cancelRefund.Float64,
			PenaltyApplied:  penaltyApplied.Bool,
			PenaltyAmount:   penaltyAmount.Float64,
			PolicyVersion:   int(policyVersion.Int64),
			RefundProcessed: refundProcessed.Bool,
		}
	}

	ride.Timestamps = domain.RideTimestamps{
		Requested: requestedAt.Time,
		Accepted:  acceptedAt.Time,
		EnRoute:   enRouteAt.Time,
		Arrived:   arrivedAt.Time,
		Started:   startedAt.Time,
		Completed: completedAt.Time,
		Cancelled: cancelledAt.Time,
	}

	return &ride, nil
}

func cancellationArgs(c *domain.CancellationRecord) []any {
	if c == nil {
		return []any{nil, nil, nil, nil, nil, nil, nil, nil}
	}
	return []any{
		string(c.CancelledBy),
		nullString(c.Reason),
		c.Fee,
		c.RefundAmount,
		c.PenaltyApplied,
		c.PenaltyAmount,
		c.PolicyVersion,
		c.RefundProcessed,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
