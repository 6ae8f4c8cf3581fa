package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

// BillingConfig holds the business-policy knobs. Values the billing team has
// not fixed organization-wide (expiry window, default issue day) are
// configuration, not constants.
type BillingConfig struct {
	VATRate                string
	SuddenChangePercent    int
	ExpiryLookaheadDays    int
	BusinessDaySearchLimit int
	DefaultIssueDay        int // 0 = last day of month
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Billing     BillingConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Billing: BillingConfig{
			VATRate:                v.GetString("BILLING_VAT_RATE"),
			SuddenChangePercent:    v.GetInt("BILLING_SUDDEN_CHANGE_PCT"),
			ExpiryLookaheadDays:    v.GetInt("BILLING_EXPIRY_LOOKAHEAD_DAYS"),
			BusinessDaySearchLimit: v.GetInt("BILLING_BUSINESS_DAY_LIMIT"),
			DefaultIssueDay:        v.GetInt("BILLING_ISSUE_DAY"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Billing.VATRate == "" {
		cfg.Billing.VATRate = "0.10"
	}
	if cfg.Billing.SuddenChangePercent == 0 {
		cfg.Billing.SuddenChangePercent = 30
	}
	if cfg.Billing.ExpiryLookaheadDays == 0 {
		cfg.Billing.ExpiryLookaheadDays = 60
	}
	if cfg.Billing.BusinessDaySearchLimit == 0 {
		cfg.Billing.BusinessDaySearchLimit = 14
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Billing.DefaultIssueDay < 0 || cfg.Billing.DefaultIssueDay > 31 {
		return fmt.Errorf("BILLING_ISSUE_DAY must be between 0 and 31")
	}
	return nil
}
