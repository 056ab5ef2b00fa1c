package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"farebroker/internal/domain"
	"farebroker/internal/repository"
)

// PolicyRepository is a PostgreSQL implementation of
// repository.PolicyRepository. Rule lists and penalty maps are stored as
// JSON documents; the policy is read-heavy and never mutated in place.
type PolicyRepository struct {
	db *sql.DB
}

// NewPolicyRepository creates a new PostgreSQL policy repository.
func NewPolicyRepository(db *sql.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// GetActive returns the single active policy.
func (r *PolicyRepository) GetActive(ctx context.Context) (*domain.CancellationPolicy, error) {
	query := `
		SELECT id, name, version, is_active, free_window_min, max_fee_percent, rules, no_show_penalties, created_at
		FROM cancellation_policies
		WHERE is_active = true
		ORDER BY version DESC
		LIMIT 1
	`

	var policy domain.CancellationPolicy
	var rulesJSON, penaltiesJSON []byte

	err := r.db.QueryRowContext(ctx, query).Scan(
		&policy.ID,
		&policy.Name,
		&policy.Version,
		&policy.IsActive,
		&policy.FreeCancellationWindow,
		&policy.MaxFeePercent,
		&rulesJSON,
		&penaltiesJSON,
		&policy.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(rulesJSON, &policy.Rules); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(penaltiesJSON, &policy.NoShowPenalties); err != nil {
		return nil, err
	}

	return &policy, nil
}

// Save persists a policy version. Saving an active policy deactivates every
// other version in the same transaction.
func (r *PolicyRepository) Save(ctx context.Context, policy *domain.CancellationPolicy) error {
	rulesJSON, err := json.Marshal(policy.Rules)
	if err != nil {
		return err
	}
	penaltiesJSON, err := json.Marshal(policy.NoShowPenalties)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if policy.IsActive {
		if _, err = tx.ExecContext(ctx, `
			UPDATE cancellation_policies SET is_active = false WHERE id <> $1
		`, policy.ID); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO cancellation_policies (id, name, version, is_active, free_window_min, max_fee_percent, rules, no_show_penalties, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			is_active = EXCLUDED.is_active,
			free_window_min = EXCLUDED.free_window_min,
			max_fee_percent = EXCLUDED.max_fee_percent,
			rules = EXCLUDED.rules,
			no_show_penalties = EXCLUDED.no_show_penalties
	`, policy.ID, policy.Name, policy.Version, policy.IsActive, policy.FreeCancellationWindow, policy.MaxFeePercent, rulesJSON, penaltiesJSON, policy.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}
