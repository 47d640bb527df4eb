/**
 * @description
 * Core domain models for member enrollments. An enrollment records a member's
 * intent to hold a health plan, its payment linkage, and its lifecycle status.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the payment state of an enrollment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// EnrollmentStatus is the lifecycle state of an enrollment. Enrollments are
// never deleted; cancellation is a status transition.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment represents a member's plan enrollment in the database.
type Enrollment struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	FullName         string           `json:"full_name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	PlanID           string           `json:"plan_id"`
	DurationMonths   int              `json:"duration_months"`
	Amount           int64            `json:"amount"` // minor units
	PaymentReference string           `json:"payment_reference"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	Status           EnrollmentStatus `json:"status"`
	LastPaymentDate  *time.Time       `json:"last_payment_date,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// EnrollmentDetail bundles an enrollment with its policy, when one has been
// issued. Returned by the member-facing detail endpoint.
type EnrollmentDetail struct {
	Enrollment Enrollment `json:"enrollment"`
	Policy     *Policy    `json:"policy,omitempty"`
}
