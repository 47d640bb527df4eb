/**
 * @description
 * HTTP handlers for the enrollment service. Handlers parse requests, call the
 * service layer, and write JSON responses; the renewal trigger handler maps
 * the run summary straight through so timer-based callers can log it.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/protonmedicare/enrollment-service/internal/app"
	"github.com/protonmedicare/enrollment-service/internal/domain"
	"github.com/protonmedicare/enrollment-service/internal/store"
	"github.com/protonmedicare/enrollment-service/pkg/paystackclient"
)

// RenewalRunner is the renewal engine surface the trigger endpoint needs.
type RenewalRunner interface {
	Run(ctx context.Context) (*domain.RenewalRunSummary, error)
}

// Handler holds the application services that handlers interact with.
type Handler struct {
	service app.Service
	runner  RenewalRunner
}

// NewHandler creates a new Handler.
func NewHandler(service app.Service, runner RenewalRunner) *Handler {
	return &Handler{service: service, runner: runner}
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, domain.Plans())
}

func (h *Handler) handleCreateEnrollment(w http.ResponseWriter, r *http.Request) {
	userID, ok := userUUIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		FullName       string `json:"full_name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		PlanID         string `json:"plan_id"`
		DurationMonths int    `json:"duration_months"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	enrollment, authorizationURL, err := h.service.CreateEnrollment(r.Context(), app.CreateEnrollmentInput{
		UserID:         userID,
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		PlanID:         req.PlanID,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		log.Printf("Error creating enrollment for user %s: %v", userID, err)
		switch {
		case errors.Is(err, domain.ErrUnknownPlan), errors.Is(err, domain.ErrUnsupportedDuration):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, paystackclient.ErrGatewayUnavailable):
			http.Error(w, "Payment gateway unavailable", http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"enrollment":        enrollment,
		"authorization_url": authorizationURL,
	})
}

func (h *Handler) handleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	userID, ok := userUUIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	enrollmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid enrollment ID", http.StatusBadRequest)
		return
	}

	detail, err := h.service.GetEnrollment(r.Context(), enrollmentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEnrollmentNotFound), errors.Is(err, app.ErrNotEnrollmentOwner):
			http.Error(w, "Enrollment not found", http.StatusNotFound)
		default:
			log.Printf("Error fetching enrollment %s: %v", enrollmentID, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleCancelEnrollment(w http.ResponseWriter, r *http.Request) {
	userID, ok := userUUIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	enrollmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid enrollment ID", http.StatusBadRequest)
		return
	}

	enrollment, err := h.service.CancelEnrollment(r.Context(), enrollmentID, userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEnrollmentNotFound), errors.Is(err, app.ErrNotEnrollmentOwner):
			http.Error(w, "Enrollment not found", http.StatusNotFound)
		default:
			log.Printf("Error cancelling enrollment %s: %v", enrollmentID, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, enrollment)
}

// handleVerifyPayment is the gateway callback target. It must tolerate the
// gateway redirecting the member here more than once for the same reference.
func (h *Handler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		http.Error(w, "Payment reference is required", http.StatusBadRequest)
		return
	}

	detail, err := h.service.VerifyPayment(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPaymentNotSuccessful):
			http.Error(w, "Payment was not successful", http.StatusPaymentRequired)
		case errors.Is(err, store.ErrEnrollmentNotFound):
			http.Error(w, "No enrollment for this reference", http.StatusNotFound)
		case errors.Is(err, paystackclient.ErrGatewayUnavailable):
			http.Error(w, "Payment gateway unavailable", http.StatusBadGateway)
		default:
			log.Printf("Error verifying payment %s: %v", reference, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// handleRunRenewals triggers one renewal invocation. Authorization happens in
// middleware before this handler runs; a 500 here means candidate selection
// failed, never that individual items did.
func (h *Handler) handleRunRenewals(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.Run(r.Context())
	if err != nil {
		log.Printf("Error running renewals: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func userUUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := UserFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// respondWithJSON writes JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
