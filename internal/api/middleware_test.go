package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestCronAuthMiddleware(t *testing.T) {
	const secret = "cron-secret-token"

	testCases := []struct {
		name           string
		configured     string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "correct bearer secret passes",
			configured:     secret,
			authHeader:     "Bearer " + secret,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header rejected",
			configured:     secret,
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong secret rejected",
			configured:     secret,
			authHeader:     "Bearer not-the-secret",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing bearer prefix rejected",
			configured:     secret,
			authHeader:     secret,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unconfigured secret rejects everything",
			configured:     "",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("POST", "/internal/renewals/run", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			CronAuthMiddleware(tc.configured)(next).ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if tc.expectedStatus == http.StatusOK && !nextCalled {
				t.Error("expected the handler to run for an authorized request")
			}
			if tc.expectedStatus != http.StatusOK && nextCalled {
				t.Error("expected the handler blocked for an unauthorized request")
			}
		})
	}
}

func mintSessionToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestSessionAuthMiddleware(t *testing.T) {
	const secret = "session-jwt-secret"
	userID := uuid.NewString()

	testCases := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{
			name:           "valid token passes",
			authHeader:     "Bearer " + mintSessionToken(t, secret, userID),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header rejected",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header rejected",
			authHeader:     "token-without-bearer",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token rejected",
			authHeader:     "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/enrollments/"+uuid.NewString(), nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			SessionAuthMiddleware(secret)(next).ServeHTTP(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if tc.expectedStatus == http.StatusOK && gotUserID != userID {
				t.Errorf("expected user id %q in context, got %q", userID, gotUserID)
			}
		})
	}
}

func TestSessionAuthMiddleware_RejectsWrongSignature(t *testing.T) {
	token := mintSessionToken(t, "a-different-secret", uuid.NewString())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a token signed with the wrong secret")
	})

	req := httptest.NewRequest("GET", "/enrollments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	SessionAuthMiddleware("session-jwt-secret")(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}
