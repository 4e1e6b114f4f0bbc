// Package faucet is the connection controller: it detects the wallet
// provider, binds the Faucet contract, follows account and chain changes,
// keeps the contract balance in sync and dispatches donations and
// withdrawals.
package faucet

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3faucet/internal/chain"
	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/ethereum/go-ethereum/common"
)

// Status is the connection lifecycle stage.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady        // provider and contract bound
	StatusAbsent       // no provider
	StatusWrongNetwork // provider present, contract not deployed on its network
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusAbsent:
		return "absent"
	case StatusWrongNetwork:
		return "wrong-network"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is an immutable snapshot of the connection. The controller replaces
// it wholesale; pointer fields are never mutated after publication.
type State struct {
	Status     Status
	Generation uint64 // incremented on every reinitialization

	// ProviderDetected is true once detection finished, whatever its result.
	ProviderDetected bool
	Provider         provider.Provider
	Client           *chain.Client
	Contract         *contract.Handle
	Account          *common.Address
	BalanceWei       *big.Int
	ReloadEpoch      uint64
	// Synced is set once the sync for ReloadEpoch has reported, whether it
	// succeeded or not.
	Synced    bool
	NetworkID string

	Err     error // detection or binding failure
	SyncErr error // last balance sync failure, cleared by the next success
}

// HasProvider reports whether a provider is bound.
func (s State) HasProvider() bool {
	return s.Provider != nil
}

// Connected reports whether donations and withdrawals are possible.
func (s State) Connected() bool {
	return s.Account != nil && s.Contract != nil
}

// WrongNetwork reports an account without a contract: the provider is on a
// network the Faucet is not deployed to.
func (s State) WrongNetwork() bool {
	return s.Account != nil && s.Contract == nil && s.Provider != nil
}

// Balance returns the contract balance in ether.
func (s State) Balance() string {
	return chain.FromWei(s.BalanceWei)
}

// Network returns display metadata for the bound network.
func (s State) Network() chain.Network {
	return chain.LookupNetwork(s.NetworkID)
}
