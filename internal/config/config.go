// Package config loads the on-disk policy and firewall configuration
// for the payment guard, mirroring the teacher's home-directory layout
// and YAML-based settings file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gzhole/paymentguard/internal/types"
)

const (
	DefaultConfigDir  = ".paymentguard"
	DefaultPolicyFile = "policy.yaml"
	DefaultLogFile    = "audit.jsonl"
)

// Config is the fully resolved runtime configuration: where the policy
// file and audit log live, plus the parsed policy/firewall settings.
type Config struct {
	PolicyPath string
	LogPath    string
	ConfigDir  string
	Policy     types.PolicyConfig
	Firewall   types.FirewallConfig
}

// fileFormat is the on-disk shape of the YAML policy file: policy
// bounds at the top level, firewall knobs under a "firewall" key.
type fileFormat struct {
	types.PolicyConfig `yaml:",inline"`
	Firewall           types.FirewallConfig `yaml:"firewall"`
}

// Load resolves the config/policy/log paths (falling back to
// ~/.paymentguard defaults for any left blank) and parses the policy
// file if one exists. A missing policy file is not an error — it
// yields a Config with every check disabled, matching PolicyConfig's
// "absent field disables that check" invariant.
func Load(policyPath, logPath string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)
	if err := ensureDir(configDir); err != nil {
		return nil, err
	}

	cfg := &Config{
		ConfigDir: configDir,
		Firewall: types.FirewallConfig{
			Enabled:             true,
			IntentDiffThreshold: 0.6,
			FailOpen:            true,
		},
	}

	if policyPath != "" {
		cfg.PolicyPath = policyPath
	} else {
		cfg.PolicyPath = filepath.Join(configDir, DefaultPolicyFile)
	}

	if logPath != "" {
		cfg.LogPath = logPath
	} else {
		cfg.LogPath = filepath.Join(configDir, DefaultLogFile)
	}

	raw, err := os.ReadFile(cfg.PolicyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	parsed := fileFormat{Firewall: cfg.Firewall}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	cfg.Policy = parsed.PolicyConfig
	cfg.Firewall = parsed.Firewall

	return cfg, nil
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0700)
	}
	return nil
}
