package faucet

import (
	"fmt"

	"github.com/Mohsinsiddi/w3faucet/internal/contract"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/cockroachdb/errors"
)

var (
	// ErrProviderAbsent means no wallet provider was detected this session.
	ErrProviderAbsent = provider.ErrAbsent
	// ErrNotConnected is returned by actions that need an account and a
	// contract when either is missing. No chain call is made.
	ErrNotConnected = errors.New("not connected: an account and a bound contract are required")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("controller already running")
	// ErrStopped is returned by actions issued after Run returned.
	ErrStopped = errors.New("controller stopped")
)

// ContractResolutionError is the binding failure behind StatusWrongNetwork.
type ContractResolutionError = contract.ResolutionError

// TransactionFailedError reports a rejected addFunds or withdraw. The
// connection state is left untouched.
type TransactionFailedError struct {
	Method string
	Reason string // root cause as reported by the provider
	Err    error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Method, e.Reason)
}

func (e *TransactionFailedError) Unwrap() error { return e.Err }

// SyncError reports a failed balance query. The previous balance is kept.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("balance sync failed: %v", e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// asAbsent returns err with ErrProviderAbsent in its unwrap chain.
func asAbsent(err error) error {
	if errors.Is(err, ErrProviderAbsent) {
		return err
	}
	return errors.WithSecondaryError(errors.Wrapf(ErrProviderAbsent, "%v", err), err)
}
