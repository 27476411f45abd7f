package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/dd-tools/databook/pkg/services/fec"
)

// Settings holds the service-wide configuration with its documented
// defaults. Values load from an optional YAML file, overridable via
// DATABOOK_* environment variables.
type Settings struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	VATRate               string `mapstructure:"vat_rate"`
	TrialBalanceTolerance string `mapstructure:"trial_balance_tolerance"`

	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	UploadDir  string `mapstructure:"upload_dir"`
	AgentModel string `mapstructure:"agent_model"`
}

// Load reads settings from path (optional, "" means defaults + env only).
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("vat_rate", "1.20")
	v.SetDefault("trial_balance_tolerance", "0.01")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("cleanup_interval", 6*time.Hour)
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("agent_model", "gemini-2.0-flash")

	v.SetEnvPrefix("DATABOOK")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	rate, err := decimal.NewFromString(s.VATRate)
	if err != nil {
		return fmt.Errorf("invalid vat_rate %q: %w", s.VATRate, err)
	}
	if !fec.ValidVATRate(rate) {
		return fmt.Errorf("vat_rate %s out of range [0.5, 2.0]", rate)
	}
	if _, err := decimal.NewFromString(s.TrialBalanceTolerance); err != nil {
		return fmt.Errorf("invalid trial_balance_tolerance %q: %w", s.TrialBalanceTolerance, err)
	}
	return nil
}

// VATRateDecimal returns the configured VAT gross-up multiplier.
func (s *Settings) VATRateDecimal() decimal.Decimal {
	return decimal.RequireFromString(s.VATRate)
}

// TrialBalanceToleranceDecimal returns the configured tolerance.
func (s *Settings) TrialBalanceToleranceDecimal() decimal.Decimal {
	return decimal.RequireFromString(s.TrialBalanceTolerance)
}
