/**
 * @description
 * Renewal work item queries: candidate selection for the renewal window,
 * the conditional claim that guards against overlapping invocations, and the
 * atomic reconciliation transaction applied after a successful external call.
 */
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/protonmedicare/enrollment-service/internal/domain"
)

// ListDueRenewals fetches pending renewal work items whose expiry date falls
// within [from, to], inclusive on both ends, eagerly joined with the owning
// user, enrollment, and policy.
func (r *Repository) ListDueRenewals(ctx context.Context, from, to time.Time) ([]domain.RenewalCandidate, error) {
	query := `
		SELECT w.id, w.enrollment_id, w.policy_id, w.user_id, w.payment_reference,
		       w.expiry_date, w.status,
		       e.id, e.user_id, e.full_name, e.email, e.phone, e.plan_id,
		       e.duration_months, e.amount, e.payment_reference, e.payment_status,
		       e.status, e.last_payment_date, e.created_at, e.updated_at,
		       p.id, p.enrollment_id, p.provider_policy_id, p.start_date, p.end_date,
		       p.created_at, p.updated_at,
		       u.email, u.full_name
		FROM renewal_work_items w
		JOIN enrollments e ON e.id = w.enrollment_id
		JOIN policies p ON p.id = w.policy_id
		JOIN users u ON u.id = w.user_id
		WHERE w.status = 'pending'
		  AND w.expiry_date >= $1
		  AND w.expiry_date <= $2
		ORDER BY w.expiry_date ASC
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.RenewalCandidate
	for rows.Next() {
		var c domain.RenewalCandidate
		if err := rows.Scan(
			&c.Item.ID, &c.Item.EnrollmentID, &c.Item.PolicyID, &c.Item.UserID,
			&c.Item.PaymentReference, &c.Item.ExpiryDate, &c.Item.Status,
			&c.Enrollment.ID, &c.Enrollment.UserID, &c.Enrollment.FullName,
			&c.Enrollment.Email, &c.Enrollment.Phone, &c.Enrollment.PlanID,
			&c.Enrollment.DurationMonths, &c.Enrollment.Amount,
			&c.Enrollment.PaymentReference, &c.Enrollment.PaymentStatus,
			&c.Enrollment.Status, &c.Enrollment.LastPaymentDate,
			&c.Enrollment.CreatedAt, &c.Enrollment.UpdatedAt,
			&c.Policy.ID, &c.Policy.EnrollmentID, &c.Policy.ProviderPolicyID,
			&c.Policy.StartDate, &c.Policy.EndDate,
			&c.Policy.CreatedAt, &c.Policy.UpdatedAt,
			&c.UserEmail, &c.UserName,
		); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// ClaimRenewalWorkItem conditionally flips a work item from 'pending' to
// 'in_progress'. A false return means another invocation already claimed or
// finalized the item, and the external renewal call must not be made.
func (r *Repository) ClaimRenewalWorkItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	query := `
		UPDATE renewal_work_items
		SET status = 'in_progress',
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteRenewal applies the local state for a successful external renewal
// as a single transaction: the work item becomes 'processed', the enrollment
// becomes active with its last payment date advanced, and the policy end date
// is extended when the provider returned a new expiry date.
func (r *Repository) CompleteRenewal(ctx context.Context, itemID, enrollmentID, policyID uuid.UUID, paidAt time.Time, newEndDate *time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE renewal_work_items
		SET status = 'processed',
		    processed_at = $2,
		    failure_reason = NULL,
		    updated_at = NOW()
		WHERE id = $1`, itemID, paidAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE enrollments
		SET status = 'active',
		    last_payment_date = $2,
		    updated_at = NOW()
		WHERE id = $1`, enrollmentID, paidAt); err != nil {
		return err
	}

	if newEndDate != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE policies
			SET end_date = $2,
			    updated_at = NOW()
			WHERE id = $1`, policyID, *newEndDate); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// MarkRenewalFailed finalizes a work item as failed and records the reason.
// Enrollment and policy rows are not touched. Failed items are terminal;
// re-queuing requires operator intervention.
func (r *Repository) MarkRenewalFailed(ctx context.Context, itemID uuid.UUID, reason string) error {
	query := `
		UPDATE renewal_work_items
		SET status = 'failed',
		    failure_reason = $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, itemID, reason)
	return err
}
