package postgres

import (
	"context"
	"database/sql"
	"errors"

	"farebroker/internal/domain"
	"farebroker/internal/repository"
)

// DirectoryRepository is a PostgreSQL-backed implementation of the
// service.Directory collaborator: existence/availability lookups plus the
// driver earnings and cancellation counters the core maintains.
type DirectoryRepository struct {
	db *sql.DB
}

// NewDirectoryRepository creates a new PostgreSQL directory repository.
func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// GetUser retrieves a directory user by ID.
func (r *DirectoryRepository) GetUser(ctx context.Context, id string) (*domain.DirectoryUser, error) {
	var user domain.DirectoryUser
	err := r.db.QueryRowContext(ctx, `
		SELECT id, role, is_available FROM directory_users WHERE id = $1
	`, id).Scan(&user.ID, &user.Role, &user.IsAvailable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetAvailability flips a driver's availability flag.
func (r *DirectoryRepository) SetAvailability(ctx context.Context, driverID string, available bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE directory_users SET is_available = $1 WHERE id = $2
	`, available, driverID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RecordCompletion adds the fare to the driver's running earnings counter.
func (r *DirectoryRepository) RecordCompletion(ctx context.Context, driverID string, earnings float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO driver_stats (driver_id, total_earnings, completed_rides, cancelled_rides)
		VALUES ($1, $2, 1, 0)
		ON CONFLICT (driver_id) DO UPDATE SET
			total_earnings = driver_stats.total_earnings + EXCLUDED.total_earnings,
			completed_rides = driver_stats.completed_rides + 1
	`, driverID, earnings)
	return err
}

// RecordCancellation bumps the driver's cancellation counter.
func (r *DirectoryRepository) RecordCancellation(ctx context.Context, driverID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO driver_stats (driver_id, total_earnings, completed_rides, cancelled_rides)
		VALUES ($1, 0, 0, 1)
		ON CONFLICT (driver_id) DO UPDATE SET
			cancelled_rides = driver_stats.cancelled_rides + 1
	`, driverID)
	return err
}

// GetDriverStats retrieves the driver's counters for reporting.
func (r *DirectoryRepository) GetDriverStats(ctx context.Context, driverID string) (*domain.DriverStats, error) {
	var stats domain.DriverStats
	err := r.db.QueryRowContext(ctx, `
		SELECT driver_id, total_earnings, completed_rides, cancelled_rides
		FROM driver_stats WHERE driver_id = $1
	`, driverID).Scan(&stats.DriverID, &stats.TotalEarnings, &stats.CompletedRides, &stats.CancelledRides)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}
