/**
 * @description
 * Business logic for the enrollment lifecycle: creating enrollments priced
 * from the plan catalog, initiating gateway checkout, and the idempotent
 * payment verification that promotes an enrollment and issues its policy.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/protonmedicare/enrollment-service/internal/domain"
	"github.com/protonmedicare/enrollment-service/internal/store"
	"github.com/protonmedicare/enrollment-service/pkg/rabbitmq"
)

var (
	ErrNotEnrollmentOwner   = errors.New("enrollment does not belong to this user")
	ErrPaymentNotSuccessful = errors.New("payment was not successful")
)

// Repository defines the database operations the enrollment service needs.
type Repository interface {
	CreateEnrollment(ctx context.Context, e *domain.Enrollment) (*domain.Enrollment, error)
	GetEnrollmentByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)
	GetPolicyByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) (*domain.Policy, error)
	CancelEnrollment(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error)
	MarkEnrollmentPaymentFailed(ctx context.Context, reference string) error
	CompletePaymentAndIssuePolicy(ctx context.Context, reference string, paidAt time.Time) (*domain.Enrollment, *domain.Policy, bool, error)
}

// PaymentGateway defines the interface for the payment provider.
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, email string, amountMinor int64, callbackURL, reference string) (string, error)
	VerifyTransaction(ctx context.Context, reference string) (status string, customerEmail string, err error)
}

// Service provides the business logic for enrollment management.
type Service struct {
	repo        Repository
	gateway     PaymentGateway
	publisher   EventPublisher
	logger      *slog.Logger
	callbackURL string
}

// NewService creates a new enrollment service.
func NewService(repo Repository, gateway PaymentGateway, publisher EventPublisher, logger *slog.Logger, callbackURL string) Service {
	return Service{
		repo:        repo,
		gateway:     gateway,
		publisher:   publisher,
		logger:      logger,
		callbackURL: callbackURL,
	}
}

// CreateEnrollmentInput carries the member's submission.
type CreateEnrollmentInput struct {
	UserID         uuid.UUID
	FullName       string
	Email          string
	Phone          string
	PlanID         string
	DurationMonths int
}

// CreateEnrollment records a pending enrollment priced from the plan catalog
// and initializes gateway checkout. The enrollment is persisted before the
// gateway call so a gateway outage leaves a retryable pending record; it is
// never marked paid here.
func (s Service) CreateEnrollment(ctx context.Context, in CreateEnrollmentInput) (*domain.Enrollment, string, error) {
	if in.FullName == "" || in.Email == "" {
		return nil, "", errors.New("full name and email are required")
	}

	amount, err := domain.PriceFor(in.PlanID, in.DurationMonths)
	if err != nil {
		return nil, "", err
	}

	enrollment := &domain.Enrollment{
		ID:               uuid.New(),
		UserID:           in.UserID,
		FullName:         in.FullName,
		Email:            in.Email,
		Phone:            in.Phone,
		PlanID:           in.PlanID,
		DurationMonths:   in.DurationMonths,
		Amount:           amount,
		PaymentReference: "PM-ENR-" + uuid.NewString(),
	}

	created, err := s.repo.CreateEnrollment(ctx, enrollment)
	if err != nil {
		return nil, "", err
	}

	authorizationURL, err := s.gateway.InitializeTransaction(ctx, created.Email, created.Amount, s.callbackURL, created.PaymentReference)
	if err != nil {
		s.logger.Warn("failed to initialize gateway transaction",
			"enrollment_id", created.ID,
			"reference", created.PaymentReference,
			"error", err,
		)
		return created, "", err
	}

	return created, authorizationURL, nil
}

// GetEnrollment returns a member's enrollment with its policy, if issued.
func (s Service) GetEnrollment(ctx context.Context, id, userID uuid.UUID) (*domain.EnrollmentDetail, error) {
	enrollment, err := s.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, ErrNotEnrollmentOwner
	}

	detail := &domain.EnrollmentDetail{Enrollment: *enrollment}
	policy, err := s.repo.GetPolicyByEnrollmentID(ctx, enrollment.ID)
	if err != nil {
		if !errors.Is(err, store.ErrPolicyNotFound) {
			return nil, err
		}
	} else {
		detail.Policy = policy
	}

	return detail, nil
}

// CancelEnrollment marks a member's enrollment cancelled. The record is kept.
func (s Service) CancelEnrollment(ctx context.Context, id, userID uuid.UUID) (*domain.Enrollment, error) {
	enrollment, err := s.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, ErrNotEnrollmentOwner
	}

	return s.repo.CancelEnrollment(ctx, id)
}

// VerifyPayment handles the gateway callback for a transaction reference. On
// a successful verification the matching pending enrollment is promoted to
// paid/active and its policy issued, atomically and exactly once; verifying
// an already-completed reference is a no-op returning the existing state.
func (s Service) VerifyPayment(ctx context.Context, reference string) (*domain.EnrollmentDetail, error) {
	if reference == "" {
		return nil, errors.New("payment reference is required")
	}

	status, _, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	if status != "success" {
		if markErr := s.repo.MarkEnrollmentPaymentFailed(ctx, reference); markErr != nil {
			s.logger.Warn("failed to record failed payment", "reference", reference, "error", markErr)
		}
		return nil, ErrPaymentNotSuccessful
	}

	enrollment, policy, promoted, err := s.repo.CompletePaymentAndIssuePolicy(ctx, reference, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if promoted {
		s.publishPaymentCompleted(ctx, enrollment, policy)
	}

	return &domain.EnrollmentDetail{Enrollment: *enrollment, Policy: policy}, nil
}

func (s Service) publishPaymentCompleted(ctx context.Context, enrollment *domain.Enrollment, policy *domain.Policy) {
	if s.publisher == nil {
		return
	}

	event := domain.PaymentCompletedEvent{
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		PlanID:       enrollment.PlanID,
		Amount:       enrollment.Amount,
		Reference:    enrollment.PaymentReference,
		Timestamp:    time.Now(),
	}
	if policy != nil {
		event.PolicyID = policy.ID
	}

	if err := s.publisher.Publish(ctx, rabbitmq.Exchange, "payment.completed", event); err != nil {
		s.logger.Warn("failed to publish payment completed event", "enrollment_id", enrollment.ID, "error", err)
	}
}
