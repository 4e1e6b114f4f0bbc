// Package metrics exposes controller counters in Prometheus format.
package metrics

import (
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transaction outcomes.
const (
	OutcomeSubmitted = "submitted"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "not_connected"
)

// Metrics holds the faucet controller metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	transactions *prometheus.CounterVec
	syncs        *prometheus.CounterVec
	resets       *prometheus.CounterVec
	balance      prometheus.Gauge
	reloadEpoch  prometheus.Gauge
}

// New creates a Metrics backed by its own registry.
func New() *Metrics {
	txs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3faucet_transactions_total",
		Help: "Faucet transactions by method and outcome",
	}, []string{"method", "outcome"})

	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3faucet_balance_syncs_total",
		Help: "Contract balance synchronizations by result",
	}, []string{"result"})

	resets := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3faucet_connection_resets_total",
		Help: "Connection reinitializations by trigger",
	}, []string{"reason"})

	balance := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "w3faucet_contract_balance_ether",
		Help: "Last synchronized contract balance in ether",
	})

	epoch := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "w3faucet_reload_epoch",
		Help: "Current reload epoch of the connection",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(txs, syncs, resets, balance, epoch)

	return &Metrics{
		registry:     r,
		transactions: txs,
		syncs:        syncs,
		resets:       resets,
		balance:      balance,
		reloadEpoch:  epoch,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncTransaction counts one dispatched transaction.
func (m *Metrics) IncTransaction(method, outcome string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(method, outcome).Inc()
}

// IncSync counts one balance synchronization ("ok" or "error").
func (m *Metrics) IncSync(result string) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues(result).Inc()
}

// IncReset counts one connection reinitialization.
func (m *Metrics) IncReset(reason string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(reason).Inc()
}

// SetBalance records the synchronized balance.
func (m *Metrics) SetBalance(wei *big.Int) {
	if m == nil || wei == nil {
		return
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	m.balance.Set(f)
}

// SetReloadEpoch records the current reload epoch.
func (m *Metrics) SetReloadEpoch(epoch uint64) {
	if m == nil {
		return
	}
	m.reloadEpoch.Set(float64(epoch))
}
