/**
 * @description
 * The policy renewal engine. One Run selects every pending renewal work item
 * expiring within the next three days, claims each item, drives the external
 * renewal call, and reconciles local state transactionally. Items are
 * processed sequentially and in isolation: one item's failure never blocks or
 * rolls back another's, and the invocation itself only errors when candidate
 * selection fails.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/protonmedicare/enrollment-service/internal/domain"
	"github.com/protonmedicare/enrollment-service/pkg/rabbitmq"
)

// renewalWindow is how far ahead of expiry a policy becomes due for renewal.
// Both window boundaries are inclusive.
const renewalWindow = 72 * time.Hour

// RenewalRepository defines the database operations the renewal engine needs.
type RenewalRepository interface {
	ListDueRenewals(ctx context.Context, from, to time.Time) ([]domain.RenewalCandidate, error)
	ClaimRenewalWorkItem(ctx context.Context, itemID uuid.UUID) (bool, error)
	CompleteRenewal(ctx context.Context, itemID, enrollmentID, policyID uuid.UUID, paidAt time.Time, newEndDate *time.Time) error
	MarkRenewalFailed(ctx context.Context, itemID uuid.UUID, reason string) error
}

// RenewalProvider defines the interface for the external renewal API.
type RenewalProvider interface {
	RenewPolicy(ctx context.Context, providerPolicyID string, paymentPlanMonths int) (*domain.ProviderRenewal, error)
}

// AuditSink defines the interface for the external audit sink.
type AuditSink interface {
	PushRenewalOutcome(ctx context.Context, rec domain.RenewalAuditRecord) error
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// RenewalRunner drives one renewal invocation end to end.
type RenewalRunner struct {
	repo      RenewalRepository
	provider  RenewalProvider
	audit     AuditSink
	publisher EventPublisher
	logger    *slog.Logger
}

// NewRenewalRunner creates a new renewal runner.
func NewRenewalRunner(repo RenewalRepository, provider RenewalProvider, audit AuditSink, publisher EventPublisher, logger *slog.Logger) *RenewalRunner {
	return &RenewalRunner{
		repo:      repo,
		provider:  provider,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
	}
}

// Run processes every pending renewal due within the window. It returns an
// error only when candidate selection fails; per-item failures are recorded
// in the summary and on the work items themselves.
func (r *RenewalRunner) Run(ctx context.Context) (*domain.RenewalRunSummary, error) {
	now := time.Now().UTC()

	candidates, err := r.repo.ListDueRenewals(ctx, now, now.Add(renewalWindow))
	if err != nil {
		return nil, fmt.Errorf("selecting due renewals: %w", err)
	}

	summary := &domain.RenewalRunSummary{RanAt: now, Evaluated: len(candidates)}
	if len(candidates) == 0 {
		summary.Message = "no renewals to process"
		r.logger.Info("renewal run found nothing to do")
		return summary, nil
	}

	r.logger.Info("renewal run starting", "candidates", len(candidates))

	for _, candidate := range candidates {
		result := r.processCandidate(ctx, candidate, now)
		summary.Items = append(summary.Items, result)

		switch result.Outcome {
		case domain.OutcomeProcessed:
			summary.Processed++
		case domain.OutcomeFailed:
			summary.Failed++
		case domain.OutcomeSkipped:
			summary.Skipped++
		}
	}

	r.logger.Info("renewal run finished",
		"evaluated", summary.Evaluated,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)

	return summary, nil
}

func (r *RenewalRunner) processCandidate(ctx context.Context, c domain.RenewalCandidate, now time.Time) domain.RenewalItemResult {
	result := domain.RenewalItemResult{WorkItemID: c.Item.ID, PolicyID: c.Policy.ID}

	claimed, err := r.repo.ClaimRenewalWorkItem(ctx, c.Item.ID)
	if err != nil {
		r.logger.Error("failed to claim renewal work item", "work_item_id", c.Item.ID, "error", err)
		result.Outcome = domain.OutcomeFailed
		result.Reason = "claim: " + err.Error()
		return result
	}
	if !claimed {
		// Another invocation got here first; its status transition is the
		// concurrency guard, so this item is simply not ours.
		r.logger.Info("renewal work item already claimed, skipping", "work_item_id", c.Item.ID)
		result.Outcome = domain.OutcomeSkipped
		result.Reason = "already claimed"
		return result
	}

	renewal, err := r.provider.RenewPolicy(ctx, c.Policy.ProviderPolicyID, c.Enrollment.DurationMonths)
	if err != nil {
		r.logger.Warn("external renewal call failed",
			"work_item_id", c.Item.ID,
			"provider_policy_id", c.Policy.ProviderPolicyID,
			"error", err,
		)
		r.failItem(ctx, c.Item.ID, err.Error())
		r.emitOutcome(ctx, c, domain.OutcomeFailed, err.Error(), nil, now)
		result.Outcome = domain.OutcomeFailed
		result.Reason = err.Error()
		return result
	}

	if err := r.repo.CompleteRenewal(ctx, c.Item.ID, c.Enrollment.ID, c.Policy.ID, now, renewal.NewExpiryDate); err != nil {
		// The provider has already extended this policy; local state does
		// not reflect it and there is no idempotency key for a safe re-call.
		// Operators reconcile these manually from this log line.
		r.logger.Error("renewal reconciliation failure: external renewal succeeded but local update failed",
			"work_item_id", c.Item.ID,
			"provider_policy_id", c.Policy.ProviderPolicyID,
			"error", err,
		)
		r.failItem(ctx, c.Item.ID, "reconciliation: "+err.Error())
		r.emitOutcome(ctx, c, domain.OutcomeFailed, "reconciliation: "+err.Error(), renewal, now)
		result.Outcome = domain.OutcomeFailed
		result.Reason = "reconciliation: " + err.Error()
		return result
	}

	r.emitOutcome(ctx, c, domain.OutcomeProcessed, "", renewal, now)
	result.Outcome = domain.OutcomeProcessed
	return result
}

func (r *RenewalRunner) failItem(ctx context.Context, itemID uuid.UUID, reason string) {
	if err := r.repo.MarkRenewalFailed(ctx, itemID, reason); err != nil {
		r.logger.Error("failed to mark renewal work item failed", "work_item_id", itemID, "error", err)
	}
}

// emitOutcome pushes a best-effort copy of the outcome to the audit sink and
// the event exchange. Failures here are logged and never affect the item.
func (r *RenewalRunner) emitOutcome(ctx context.Context, c domain.RenewalCandidate, outcome domain.RenewalOutcome, reason string, renewal *domain.ProviderRenewal, now time.Time) {
	rec := domain.RenewalAuditRecord{
		WorkItemID:       c.Item.ID,
		UserID:           c.Item.UserID,
		PolicyID:         c.Policy.ID,
		PaymentReference: c.Item.PaymentReference,
		Outcome:          outcome,
		RecordedAt:       now,
	}
	var newExpiry *time.Time
	if renewal != nil {
		rec.ProviderResponse = renewal.RawResponse
		newExpiry = renewal.NewExpiryDate
	}
	if r.audit != nil {
		if err := r.audit.PushRenewalOutcome(ctx, rec); err != nil {
			r.logger.Warn("failed to push renewal outcome to audit sink", "work_item_id", c.Item.ID, "error", err)
		}
	}

	if r.publisher == nil {
		return
	}
	event := domain.RenewalOutcomeEvent{
		WorkItemID:    c.Item.ID,
		EnrollmentID:  c.Enrollment.ID,
		PolicyID:      c.Policy.ID,
		UserID:        c.Item.UserID,
		Outcome:       string(outcome),
		FailureReason: reason,
		NewExpiryDate: newExpiry,
		Timestamp:     now,
	}
	routingKey := "renewal." + string(outcome)
	if err := r.publisher.Publish(ctx, rabbitmq.Exchange, routingKey, event); err != nil {
		r.logger.Warn("failed to publish renewal outcome event", "work_item_id", c.Item.ID, "error", err)
	}
}
