package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/enrollment")
	t.Setenv("SESSION_JWT_SECRET", "session-secret")
	t.Setenv("RENEWAL_CRON_SECRET", "cron-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.ServerPort != "8090" {
		t.Errorf("expected default port 8090, got %s", cfg.ServerPort)
	}
	if cfg.PaystackBaseURL != "https://api.paystack.co" {
		t.Errorf("expected the Paystack production base URL, got %s", cfg.PaystackBaseURL)
	}
	if cfg.RenewalJobSchedule != "0 * * * *" {
		t.Errorf("expected an hourly default schedule, got %s", cfg.RenewalJobSchedule)
	}
	if cfg.EnrollmentRPM != 10 {
		t.Errorf("expected default enrollment rate of 10, got %d", cfg.EnrollmentRPM)
	}
}

func TestLoadConfig_PortOverride(t *testing.T) {
	viper.Reset()
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9000" {
		t.Errorf("expected PORT to override the server port, got %s", cfg.ServerPort)
	}
}

func TestLoadConfig_RequiredFields(t *testing.T) {
	testCases := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{name: "database url", unset: "DATABASE_URL", wantErr: "DATABASE_URL"},
		{name: "cron secret", unset: "RENEWAL_CRON_SECRET", wantErr: "RENEWAL_CRON_SECRET"},
		{name: "session secret", unset: "SESSION_JWT_SECRET", wantErr: "SESSION_JWT_SECRET"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			setRequiredEnv(t)
			t.Setenv(tc.unset, "")

			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected an error when %s is missing", tc.unset)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected the error to name %s, got %v", tc.wantErr, err)
			}
		})
	}
}
