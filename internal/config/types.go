package config

import "time"

// Account-change policies. A deployment picks one and keeps it.
const (
	PolicySoft  = "soft"  // follow the provider's first account in place
	PolicyReset = "reset" // tear down and reinitialize the connection
)

// Config holds all w3faucet configuration.
type Config struct {
	ProviderURL   string `json:"provider_url"   mapstructure:"provider_url"`
	Wallet        string `json:"wallet"         mapstructure:"wallet"` // signing wallet name; empty = node-managed accounts
	ContractName  string `json:"contract_name"  mapstructure:"contract_name"`
	ArtifactsDir  string `json:"artifacts_dir"  mapstructure:"artifacts_dir"`
	AccountPolicy string `json:"account_policy" mapstructure:"account_policy"` // "soft" | "reset"
	DetectTimeout int    `json:"detect_timeout" mapstructure:"detect_timeout"` // seconds
	SyncTimeout   int    `json:"sync_timeout"   mapstructure:"sync_timeout"`   // seconds, per attempt
	SyncRetries   int    `json:"sync_retries"   mapstructure:"sync_retries"`
	TxTimeout     int    `json:"tx_timeout"     mapstructure:"tx_timeout"`     // seconds
	WatchInterval int    `json:"watch_interval" mapstructure:"watch_interval"` // seconds
	LogLevel      string `json:"log_level"      mapstructure:"log_level"`
	MetricsAddr   string `json:"metrics_addr"   mapstructure:"metrics_addr"`

	// internal: config dir path used for Save()
	configDir string
}

// DetectTimeoutDuration returns the provider probe timeout.
func (c *Config) DetectTimeoutDuration() time.Duration {
	return time.Duration(c.DetectTimeout) * time.Second
}

// SyncTimeoutDuration returns the per-attempt balance query timeout.
func (c *Config) SyncTimeoutDuration() time.Duration {
	return time.Duration(c.SyncTimeout) * time.Second
}

// TxTimeoutDuration returns the transaction submission timeout.
func (c *Config) TxTimeoutDuration() time.Duration {
	return time.Duration(c.TxTimeout) * time.Second
}

// WatchIntervalDuration returns how often node-backed providers look for
// account and chain changes.
func (c *Config) WatchIntervalDuration() time.Duration {
	return time.Duration(c.WatchInterval) * time.Second
}
