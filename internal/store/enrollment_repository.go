/**
 * @description
 * Enrollment queries: creation, lookup, cancellation, and the atomic
 * payment-promotion transaction that flips a pending enrollment to paid and
 * issues its policy exactly once.
 */
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/protonmedicare/enrollment-service/internal/domain"
)

const enrollmentColumns = `
	id, user_id, full_name, email, phone, plan_id, duration_months, amount,
	payment_reference, payment_status, status, last_payment_date, created_at, updated_at`

func scanEnrollment(row pgx.Row) (*domain.Enrollment, error) {
	var e domain.Enrollment
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.FullName,
		&e.Email,
		&e.Phone,
		&e.PlanID,
		&e.DurationMonths,
		&e.Amount,
		&e.PaymentReference,
		&e.PaymentStatus,
		&e.Status,
		&e.LastPaymentDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &e, nil
}

// CreateEnrollment inserts a new pending enrollment.
func (r *Repository) CreateEnrollment(ctx context.Context, e *domain.Enrollment) (*domain.Enrollment, error) {
	query := `
		INSERT INTO enrollments (
			id, user_id, full_name, email, phone, plan_id, duration_months, amount,
			payment_reference, payment_status, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', 'pending')
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.db.QueryRow(ctx, query,
		e.ID,
		e.UserID,
		e.FullName,
		e.Email,
		e.Phone,
		e.PlanID,
		e.DurationMonths,
		e.Amount,
		e.PaymentReference,
	))
}

// GetEnrollmentByID retrieves one enrollment.
func (r *Repository) GetEnrollmentByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	return scanEnrollment(r.db.QueryRow(ctx, query, id))
}

// GetEnrollmentByReference retrieves an enrollment by its payment reference.
func (r *Repository) GetEnrollmentByReference(ctx context.Context, reference string) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE payment_reference = $1`
	return scanEnrollment(r.db.QueryRow(ctx, query, reference))
}

// CancelEnrollment marks an enrollment cancelled. The row is kept.
func (r *Repository) CancelEnrollment(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	query := `
		UPDATE enrollments
		SET status = 'cancelled',
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + enrollmentColumns
	return scanEnrollment(r.db.QueryRow(ctx, query, id))
}

// MarkEnrollmentPaymentFailed records a failed gateway verification for an
// enrollment that is still pending. Completed enrollments are not touched.
func (r *Repository) MarkEnrollmentPaymentFailed(ctx context.Context, reference string) error {
	query := `
		UPDATE enrollments
		SET payment_status = 'failed',
		    updated_at = NOW()
		WHERE payment_reference = $1
		  AND payment_status = 'pending'
	`
	_, err := r.db.Exec(ctx, query, reference)
	return err
}

// CompletePaymentAndIssuePolicy promotes the pending enrollment matching the
// verified payment reference to paid/active and materializes its policy, all
// in one transaction. The row is locked FOR UPDATE so a duplicate
// verification callback observes the already-paid state and becomes a no-op;
// the second return value reports whether this call performed the promotion.
func (r *Repository) CompletePaymentAndIssuePolicy(ctx context.Context, reference string, paidAt time.Time) (*domain.Enrollment, *domain.Policy, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, false, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE payment_reference = $1 FOR UPDATE`
	enrollment, err := scanEnrollment(tx.QueryRow(ctx, query, reference))
	if err != nil {
		return nil, nil, false, err
	}

	if enrollment.PaymentStatus != domain.PaymentPending {
		// Already completed by an earlier callback.
		policy, err := getPolicyByEnrollmentID(ctx, tx, enrollment.ID)
		if err != nil && err != ErrPolicyNotFound {
			return nil, nil, false, err
		}
		return enrollment, policy, false, nil
	}

	enrollment, err = scanEnrollment(tx.QueryRow(ctx, `
		UPDATE enrollments
		SET payment_status = 'paid',
		    status = 'active',
		    last_payment_date = $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+enrollmentColumns, enrollment.ID, paidAt))
	if err != nil {
		return nil, nil, false, err
	}

	policy := &domain.Policy{
		ID:               uuid.New(),
		EnrollmentID:     enrollment.ID,
		ProviderPolicyID: "PM-" + uuid.NewString(),
		StartDate:        paidAt,
		EndDate:          paidAt.AddDate(0, enrollment.DurationMonths, 0),
	}
	policy, err = scanPolicy(tx.QueryRow(ctx, `
		INSERT INTO policies (id, enrollment_id, provider_policy_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+policyColumns,
		policy.ID, policy.EnrollmentID, policy.ProviderPolicyID, policy.StartDate, policy.EndDate))
	if err != nil {
		return nil, nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, false, err
	}
	return enrollment, policy, true, nil
}
