/**
 * @description
 * Configuration management for the enrollment service, loaded from
 * environment variables via viper.
 */
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RedisURL           string `mapstructure:"REDIS_URL"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	SessionJWTSecret   string `mapstructure:"SESSION_JWT_SECRET"`
	RenewalCronSecret  string `mapstructure:"RENEWAL_CRON_SECRET"`
	PaystackBaseURL    string `mapstructure:"PAYSTACK_BASE_URL"`
	PaystackSecretKey  string `mapstructure:"PAYSTACK_SECRET_KEY"`
	PaymentCallbackURL string `mapstructure:"PAYMENT_CALLBACK_URL"`
	RenewalAPIURL      string `mapstructure:"RENEWAL_API_URL"`
	RenewalAPIToken    string `mapstructure:"RENEWAL_API_TOKEN"`
	AuditSinkURL       string `mapstructure:"AUDIT_SINK_URL"`
	RenewalJobSchedule string `mapstructure:"RENEWAL_JOB_SCHEDULE"`
	EnrollmentRPM      int64  `mapstructure:"ENROLLMENT_REQUESTS_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8090")
	viper.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	viper.SetDefault("RENEWAL_JOB_SCHEDULE", "0 * * * *")
	viper.SetDefault("ENROLLMENT_REQUESTS_PER_MINUTE", 10)
	viper.AutomaticEnv()

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SESSION_JWT_SECRET")
	_ = viper.BindEnv("RENEWAL_CRON_SECRET")
	_ = viper.BindEnv("PAYSTACK_BASE_URL")
	_ = viper.BindEnv("PAYSTACK_SECRET_KEY")
	_ = viper.BindEnv("PAYMENT_CALLBACK_URL")
	_ = viper.BindEnv("RENEWAL_API_URL")
	_ = viper.BindEnv("RENEWAL_API_TOKEN")
	_ = viper.BindEnv("AUDIT_SINK_URL")
	_ = viper.BindEnv("RENEWAL_JOB_SCHEDULE")
	_ = viper.BindEnv("ENROLLMENT_REQUESTS_PER_MINUTE")

	if err = viper.Unmarshal(&config); err != nil {
		return
	}
	if port := os.Getenv("PORT"); port != "" {
		config.ServerPort = port
	}

	err = config.validate()
	return
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RenewalCronSecret == "" {
		return fmt.Errorf("RENEWAL_CRON_SECRET is required")
	}
	if c.SessionJWTSecret == "" {
		return fmt.Errorf("SESSION_JWT_SECRET is required")
	}
	return nil
}
