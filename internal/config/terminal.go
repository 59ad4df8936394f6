package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TerminalProfile is the register-side configuration, loaded from a YAML
// file so a store can tune one terminal without rebuilding.
type TerminalProfile struct {
	APIBaseURL     string         `yaml:"api_base_url"`
	SnapshotDBPath string         `yaml:"snapshot_db_path"`
	PaymentMethods []string       `yaml:"payment_methods"`
	Scanner        ScannerProfile `yaml:"scanner"`
	Catalog        CatalogProfile `yaml:"catalog"`
}

type ScannerProfile struct {
	BurstWindowMs int `yaml:"burst_window_ms"`
	IdleTimeoutMs int `yaml:"idle_timeout_ms"`
	MinCodeLength int `yaml:"min_code_length"`
}

type CatalogProfile struct {
	ValidityMinutes  int `yaml:"validity_minutes"`
	FreshnessMinutes int `yaml:"freshness_minutes"`
	PageSize         int `yaml:"page_size"`
}

// DefaultTerminalProfile returns the profile used when no file is configured.
func DefaultTerminalProfile() TerminalProfile {
	return TerminalProfile{
		APIBaseURL:     "http://localhost:8080",
		SnapshotDBPath: "pos.db",
		PaymentMethods: []string{"cash", "card"},
	}
}

// LoadTerminalProfile reads the profile at path, filling missing fields from
// the defaults. The path itself comes from POS_PROFILE when path is empty; if
// neither is set the defaults are returned as-is.
func LoadTerminalProfile(path string) (TerminalProfile, error) {
	profile := DefaultTerminalProfile()

	if path == "" {
		path = os.Getenv("POS_PROFILE")
	}
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("load terminal profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse terminal profile %s: %w", path, err)
	}

	defaults := DefaultTerminalProfile()
	if profile.APIBaseURL == "" {
		profile.APIBaseURL = defaults.APIBaseURL
	}
	if profile.SnapshotDBPath == "" {
		profile.SnapshotDBPath = defaults.SnapshotDBPath
	}
	if len(profile.PaymentMethods) == 0 {
		profile.PaymentMethods = defaults.PaymentMethods
	}
	return profile, nil
}

// BurstWindow converts the profile's millisecond setting, zero meaning
// "use the classifier default".
func (p ScannerProfile) BurstWindow() time.Duration {
	return time.Duration(p.BurstWindowMs) * time.Millisecond
}

func (p ScannerProfile) IdleTimeout() time.Duration {
	return time.Duration(p.IdleTimeoutMs) * time.Millisecond
}

func (p CatalogProfile) Validity() time.Duration {
	return time.Duration(p.ValidityMinutes) * time.Minute
}

func (p CatalogProfile) Freshness() time.Duration {
	return time.Duration(p.FreshnessMinutes) * time.Minute
}
