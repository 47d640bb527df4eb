package paystackclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitializeTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("expected path /transaction/initialize, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_secret" {
			t.Errorf("unexpected Authorization header: %s", auth)
		}

		var req struct {
			Email       string `json:"email"`
			Amount      int64  `json:"amount"`
			CallbackURL string `json:"callback_url"`
			Reference   string `json:"reference"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Email != "ada@example.com" || req.Amount != 997500 || req.Reference != "PM-ENR-ref-1" {
			t.Errorf("unexpected request body: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc123","access_code":"abc123","reference":"PM-ENR-ref-1"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret")
	url, err := client.InitializeTransaction(context.Background(), "ada@example.com", 997500, "https://app.example.com/verify", "PM-ENR-ref-1")
	if err != nil {
		t.Fatalf("InitializeTransaction returned error: %v", err)
	}
	if url != "https://checkout.paystack.com/abc123" {
		t.Errorf("unexpected authorization URL: %s", url)
	}
}

func TestInitializeTransaction_GatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid amount"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret")
	if _, err := client.InitializeTransaction(context.Background(), "ada@example.com", -1, "", "ref"); err == nil {
		t.Fatal("expected an error for a rejected initialize")
	}
}

func TestInitializeTransaction_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "sk_test_secret")
	_, err := client.InitializeTransaction(context.Background(), "ada@example.com", 100, "", "ref")
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/PM-ENR-ref-2" {
			t.Errorf("expected verify path for the reference, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_secret" {
			t.Errorf("unexpected Authorization header: %s", auth)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","amount":997500,"customer":{"email":"ada@example.com"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret")
	status, email, err := client.VerifyTransaction(context.Background(), "PM-ENR-ref-2")
	if err != nil {
		t.Fatalf("VerifyTransaction returned error: %v", err)
	}
	if status != "success" {
		t.Errorf("expected status success, got %s", status)
	}
	if email != "ada@example.com" {
		t.Errorf("expected customer email, got %s", email)
	}
}

func TestVerifyTransaction_AbandonedCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"abandoned","amount":997500,"customer":{"email":"ada@example.com"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret")
	status, _, err := client.VerifyTransaction(context.Background(), "PM-ENR-ref-3")
	if err != nil {
		t.Fatalf("VerifyTransaction returned error: %v", err)
	}
	if status != "abandoned" {
		t.Errorf("expected status abandoned, got %s", status)
	}
}

func TestVerifyTransaction_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "sk_test_secret")
	_, _, err := client.VerifyTransaction(context.Background(), "PM-ENR-ref-4")
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}
