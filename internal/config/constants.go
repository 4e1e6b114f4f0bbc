package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitETHTransfer  = uint64(21_000)  // plain value transfer
	GasLimitContractCall = uint64(200_000) // addFunds / withdraw
)

// Timeouts used when a config value is missing or zero.
const (
	DefaultDetectTimeout = 5 * time.Second
	DefaultSyncTimeout   = 10 * time.Second
	DefaultTxTimeout     = 3 * time.Minute
	DefaultWatchInterval = 2 * time.Second
)
