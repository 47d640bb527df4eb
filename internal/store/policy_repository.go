/**
 * @description
 * Policy queries.
 */
package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/protonmedicare/enrollment-service/internal/domain"
)

const policyColumns = `
	id, enrollment_id, provider_policy_id, start_date, end_date, created_at, updated_at`

func scanPolicy(row pgx.Row) (*domain.Policy, error) {
	var p domain.Policy
	err := row.Scan(
		&p.ID,
		&p.EnrollmentID,
		&p.ProviderPolicyID,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	return &p, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getPolicyByEnrollmentID(ctx context.Context, q querier, enrollmentID uuid.UUID) (*domain.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE enrollment_id = $1`
	return scanPolicy(q.QueryRow(ctx, query, enrollmentID))
}

// GetPolicyByEnrollmentID retrieves the policy owned by an enrollment.
func (r *Repository) GetPolicyByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) (*domain.Policy, error) {
	return getPolicyByEnrollmentID(ctx, r.db, enrollmentID)
}
