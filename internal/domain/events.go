/**
 * @description
 * Event payloads published to the message broker for downstream notification
 * processing. Publishing is best-effort and never affects request outcomes.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentCompletedEvent is published when a pending enrollment is promoted to
// paid and its policy is issued.
type PaymentCompletedEvent struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	UserID       uuid.UUID `json:"user_id"`
	PolicyID     uuid.UUID `json:"policy_id"`
	PlanID       string    `json:"plan_id"`
	Amount       int64     `json:"amount"`
	Reference    string    `json:"reference"`
	Timestamp    time.Time `json:"timestamp"`
}

// RenewalOutcomeEvent is published for each renewal work item that reaches a
// terminal status during a renewal run.
type RenewalOutcomeEvent struct {
	WorkItemID    uuid.UUID  `json:"work_item_id"`
	EnrollmentID  uuid.UUID  `json:"enrollment_id"`
	PolicyID      uuid.UUID  `json:"policy_id"`
	UserID        uuid.UUID  `json:"user_id"`
	Outcome       string     `json:"outcome"`
	FailureReason string     `json:"failure_reason,omitempty"`
	NewExpiryDate *time.Time `json:"new_expiry_date,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}
