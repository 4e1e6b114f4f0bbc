package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultProviderURL   = "http://127.0.0.1:7545" // Ganache
	defaultContractName  = "Faucet"
	defaultArtifactsDir  = "build/contracts"
	defaultAccountPolicy = PolicySoft
	defaultDetectTimeout = 5
	defaultSyncTimeout   = 10
	defaultSyncRetries   = 2
	defaultTxTimeout     = 180
	defaultInterval      = 2
	defaultLogLevel      = "info"

	envPrefix     = "W3FAUCET"
	configFile    = "config.json"
	walletsFile   = "wallets.json"
	contractsFile = "contracts.json"
	logFile       = "w3faucet.log"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.w3faucet.
// Every key can be overridden by a W3FAUCET_<KEY> environment variable.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3faucet")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.configDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the controller cannot run with.
func (c *Config) Validate() error {
	switch c.AccountPolicy {
	case PolicySoft, PolicyReset:
	default:
		return fmt.Errorf("invalid account_policy %q (want %q or %q)", c.AccountPolicy, PolicySoft, PolicyReset)
	}
	if c.ContractName == "" {
		return fmt.Errorf("contract_name must not be empty")
	}
	if c.DetectTimeout <= 0 || c.SyncTimeout <= 0 || c.TxTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.SyncRetries < 0 {
		return fmt.Errorf("sync_retries must not be negative")
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch_interval must be positive")
	}
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// ContractsPath returns the path of contracts.json (manual deployment overrides).
func (c *Config) ContractsPath() string {
	return filepath.Join(c.configDir, contractsFile)
}

// LogPath returns the log file used while the dashboard owns the terminal.
func (c *Config) LogPath() string {
	return filepath.Join(c.configDir, logFile)
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider_url", defaultProviderURL)
	v.SetDefault("wallet", "")
	v.SetDefault("contract_name", defaultContractName)
	v.SetDefault("artifacts_dir", defaultArtifactsDir)
	v.SetDefault("account_policy", defaultAccountPolicy)
	v.SetDefault("detect_timeout", defaultDetectTimeout)
	v.SetDefault("sync_timeout", defaultSyncTimeout)
	v.SetDefault("sync_retries", defaultSyncRetries)
	v.SetDefault("tx_timeout", defaultTxTimeout)
	v.SetDefault("watch_interval", defaultInterval)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("metrics_addr", "")
}
