package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/faucet"
	"github.com/Mohsinsiddi/w3faucet/internal/metrics"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/Mohsinsiddi/w3faucet/internal/ui"
	"github.com/Mohsinsiddi/w3faucet/internal/wallet"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// session is a running controller and the metrics endpoint serving it.
type session struct {
	ctrl   *faucet.Controller
	cancel context.CancelFunc
	srv    *http.Server
	log    *log.Logger
}

// startSession wires detector, binder and metrics from cfg and starts the
// controller in the background.
func startSession(ctx context.Context, l *log.Logger) (*session, error) {
	var signer provider.Signer
	if cfg.Wallet != "" {
		s, err := newWalletManager().Signer(cfg.Wallet)
		if err != nil {
			return nil, fmt.Errorf("wallet %q: %w", cfg.Wallet, err)
		}
		signer = s
		l.Debug("signing locally", "wallet", cfg.Wallet, "address", s.Address())
	}

	reg := newContractRegistry()
	if err := reg.Load(); err != nil {
		return nil, err
	}

	det := provider.NewDetector(provider.DetectConfig{
		URL:           cfg.ProviderURL,
		Timeout:       cfg.DetectTimeoutDuration(),
		WatchInterval: cfg.WatchIntervalDuration(),
		Signer:        signer,
		Logger:        l.WithPrefix("provider"),
	})
	binder := contract.NewBinder(contract.NewArtifactSource(cfg.ArtifactsDir, reg))

	m := metrics.New()
	opts := append(faucet.FromConfig(cfg), faucet.WithLogger(l), faucet.WithMetrics(m))
	ctrl := faucet.New(det, binder, opts...)

	ctx, cancel := context.WithCancel(ctx)
	s := &session{ctrl: ctrl, cancel: cancel, log: l}
	go func() {
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error("controller stopped", "err", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		s.srv = &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Error("metrics server", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
		l.Info("serving metrics", "addr", cfg.MetricsAddr)
	}
	return s, nil
}

// Close stops the controller and the metrics server.
func (s *session) Close() {
	s.cancel()
	<-s.ctrl.Done()
	if s.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			s.log.Warn("metrics server shutdown", "err", err)
		}
	}
}

// settled waits until detection and binding finished and, when a contract
// is bound, the first balance sync has reported.
func (s *session) settled(ctx context.Context) (faucet.State, error) {
	ch := make(chan faucet.State, 16)
	sub := s.ctrl.Subscribe(ch)
	defer sub.Unsubscribe()

	st := s.ctrl.State()
	for !isSettled(st) {
		select {
		case st = <-ch:
		case <-ctx.Done():
			return st, ctx.Err()
		case <-s.ctrl.Done():
			return st, faucet.ErrStopped
		}
	}
	return st, nil
}

func isSettled(st faucet.State) bool {
	switch st.Status {
	case faucet.StatusAbsent, faucet.StatusWrongNetwork:
		return true
	case faucet.StatusReady:
		return st.Synced
	}
	return false
}

// --- package helpers ---

func newWalletManager() *wallet.Manager {
	opts := []wallet.Option{wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath()))}
	ks, err := wallet.DefaultKeystore(filepath.Join(cfg.Dir(), "keys"))
	if err != nil {
		lg.Warn("keychain unavailable, keys will not persist", "err", err)
	} else {
		opts = append(opts, wallet.WithKeyStore(ks))
	}
	return wallet.NewManager(opts...)
}

// nextWallet cycles through the local wallets in name order, starting after
// current. The dashboard calls it serially.
func nextWallet(m *wallet.Manager, current string) ui.SignerSource {
	return func() (provider.Signer, error) {
		wallets, err := m.List()
		if err != nil {
			return nil, err
		}
		if len(wallets) == 0 {
			return nil, errors.New("no local wallets")
		}
		i := 0
		for j, w := range wallets {
			if w.Name == current {
				i = (j + 1) % len(wallets)
				break
			}
		}
		s, err := m.Signer(wallets[i].Name)
		if err != nil {
			return nil, err
		}
		current = wallets[i].Name
		return s, nil
	}
}

func newContractRegistry() *contract.Registry {
	return contract.NewRegistry(cfg.ContractsPath())
}

// errLine renders err for the terminal, preferring the provider's own reason.
func errLine(err error) string {
	var txErr *faucet.TransactionFailedError
	if errors.As(err, &txErr) {
		return ui.Err(fmt.Sprintf("%s rejected: %s", txErr.Method, txErr.Reason))
	}
	return ui.Err(err.Error())
}
