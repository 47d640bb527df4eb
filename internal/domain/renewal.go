/**
 * @description
 * Domain models for the policy renewal engine: queued work items, the joined
 * candidate rows the scheduler consumes, and the tagged per-item outcomes
 * aggregated into an invocation summary.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Renewal work item statuses. 'pending' rows are consumed by the renewal run;
// 'in_progress' marks a claimed item so overlapping invocations cannot issue
// duplicate external renewal calls; 'processed' and 'failed' are terminal.
const (
	RenewalPending    = "pending"
	RenewalInProgress = "in_progress"
	RenewalProcessed  = "processed"
	RenewalFailed     = "failed"
)

// RenewalWorkItem is one policy due for renewal. Rows are created by the
// provisioning process when a policy approaches its renewal window; this
// service only consumes them.
type RenewalWorkItem struct {
	ID               uuid.UUID  `json:"id"`
	EnrollmentID     uuid.UUID  `json:"enrollment_id"`
	PolicyID         uuid.UUID  `json:"policy_id"`
	UserID           uuid.UUID  `json:"user_id"`
	PaymentReference string     `json:"payment_reference"`
	ExpiryDate       time.Time  `json:"expiry_date"`
	Status           string     `json:"status"`
	FailureReason    *string    `json:"failure_reason,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
}

// RenewalCandidate is a pending work item eagerly joined with the rows the
// renewal call and reconciliation need.
type RenewalCandidate struct {
	Item       RenewalWorkItem
	Enrollment Enrollment
	Policy     Policy
	UserEmail  string
	UserName   string
}

// RenewalOutcome tags the terminal result of processing one candidate.
type RenewalOutcome string

const (
	OutcomeProcessed RenewalOutcome = "processed"
	OutcomeFailed    RenewalOutcome = "failed"
	OutcomeSkipped   RenewalOutcome = "skipped"
)

// RenewalItemResult is the structured outcome for a single work item.
type RenewalItemResult struct {
	WorkItemID uuid.UUID      `json:"work_item_id"`
	PolicyID   uuid.UUID      `json:"policy_id"`
	Outcome    RenewalOutcome `json:"outcome"`
	Reason     string         `json:"reason,omitempty"`
}

// RenewalRunSummary aggregates one invocation of the renewal engine.
type RenewalRunSummary struct {
	RanAt     time.Time           `json:"ran_at"`
	Evaluated int                 `json:"evaluated"`
	Processed int                 `json:"processed"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
	Message   string              `json:"message,omitempty"`
	Items     []RenewalItemResult `json:"items,omitempty"`
}

// RenewalAuditRecord is the outcome copy pushed to the external audit sink.
type RenewalAuditRecord struct {
	WorkItemID       uuid.UUID
	UserID           uuid.UUID
	PolicyID         uuid.UUID
	PaymentReference string
	Outcome          RenewalOutcome
	ProviderResponse []byte
	RecordedAt       time.Time
}

// ProviderRenewal is the parsed result of a successful external renewal call.
// NewExpiryDate is nil when the provider response omitted or malformed the
// date; the policy end date is then left unchanged rather than fabricated.
type ProviderRenewal struct {
	NewExpiryDate *time.Time
	RawResponse   []byte
}
