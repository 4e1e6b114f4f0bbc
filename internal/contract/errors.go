package contract

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrArtifactNotFound means no build artifact exists for the contract.
	ErrArtifactNotFound = errors.New("build artifact not found")
	// ErrNotDeployed means the contract has no deployment on the network.
	ErrNotDeployed = errors.New("contract not deployed on this network")
	// ErrMissingMethod means the ABI lacks a method the faucet needs.
	ErrMissingMethod = errors.New("contract ABI is missing a required method")
)

// ResolutionError reports that a contract could not be bound on a network.
type ResolutionError struct {
	Name      string
	NetworkID string // empty if the network id could not be read
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.NetworkID == "" {
		return fmt.Sprintf("resolving %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("resolving %s on network %s: %v", e.Name, e.NetworkID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
