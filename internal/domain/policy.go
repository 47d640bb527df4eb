/**
 * @description
 * Policy domain model. A policy is the provider-issued coverage record
 * materialized exactly once when its owning enrollment is first paid.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Policy represents an active coverage grant tied to a paid enrollment.
// EndDate is only ever extended by a successful renewal, never shortened.
type Policy struct {
	ID               uuid.UUID `json:"id"`
	EnrollmentID     uuid.UUID `json:"enrollment_id"`
	ProviderPolicyID string    `json:"provider_policy_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
