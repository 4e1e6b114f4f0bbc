package faucet

import (
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/config"
	"github.com/Mohsinsiddi/w3faucet/internal/metrics"
	"github.com/charmbracelet/log"
)

// Option configures a Controller.
type Option func(*Controller)

// WithContractName sets the contract to bind (default "Faucet").
func WithContractName(name string) Option {
	return func(c *Controller) {
		c.contractName = name
	}
}

// WithAccountPolicy sets how accountsChanged is handled: config.PolicySoft
// follows the first account in place, config.PolicyReset reinitializes.
func WithAccountPolicy(policy string) Option {
	return func(c *Controller) {
		c.policy = policy
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithMetrics records controller activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithSyncPolicy bounds balance queries: each attempt gets timeout, failed
// attempts are retried up to retries times starting at backoff.
func WithSyncPolicy(timeout time.Duration, retries int, backoff time.Duration) Option {
	return func(c *Controller) {
		c.syncTimeout = timeout
		c.syncRetries = retries
		c.syncBackoff = backoff
	}
}

// WithTxTimeout bounds how long a transaction may wait for submission.
func WithTxTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.txTimeout = d
	}
}

// FromConfig maps the file configuration onto options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithContractName(cfg.ContractName),
		WithAccountPolicy(cfg.AccountPolicy),
		WithSyncPolicy(cfg.SyncTimeoutDuration(), cfg.SyncRetries, defaultSyncBackoff),
		WithTxTimeout(cfg.TxTimeoutDuration()),
	}
}
