package provider

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// DetectConfig configures a Detector.
type DetectConfig struct {
	URL           string
	Timeout       time.Duration // bounds dial + probe
	WatchInterval time.Duration
	Signer        Signer // nil: use the node's own accounts
	Logger        *log.Logger
}

// Detector locates the wallet provider for a session.
type Detector struct {
	cfg DetectConfig
}

// NewDetector creates a Detector.
func NewDetector(cfg DetectConfig) *Detector {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return &Detector{cfg: cfg}
}

// Detect dials the configured endpoint and probes it once with eth_chainId.
// Every failure wraps ErrAbsent; there is no retry.
func (d *Detector) Detect(ctx context.Context) (Provider, error) {
	if d.cfg.URL == "" {
		return nil, errors.Wrap(ErrAbsent, "no provider url configured")
	}

	probeCtx := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	client, err := rpc.DialContext(probeCtx, d.cfg.URL)
	if err != nil {
		return nil, absent(err, "dialing %s", d.cfg.URL)
	}

	var id hexutil.Big
	if err := client.CallContext(probeCtx, &id, MethodChainID); err != nil {
		client.Close()
		return nil, absent(err, "probing %s", d.cfg.URL)
	}

	interval := d.cfg.WatchInterval
	if interval <= 0 {
		interval = time.Second
	}

	if d.cfg.Signer != nil {
		d.cfg.Logger.Info("provider detected", "url", d.cfg.URL, "chain", id.ToInt(), "signer", d.cfg.Signer.Address())
		return NewKeystoreProvider(client, d.cfg.Signer, interval, d.cfg.Logger), nil
	}
	d.cfg.Logger.Info("provider detected", "url", d.cfg.URL, "chain", id.ToInt())
	return NewNodeProvider(client, interval, d.cfg.Logger), nil
}

// absent wraps ErrAbsent with the failing step. cause stays attached for
// %+v output but is not part of the unwrap chain.
func absent(cause error, format string, args ...any) error {
	return errors.WithSecondaryError(errors.Wrapf(ErrAbsent, format+": %v", append(args, cause)...), cause)
}
