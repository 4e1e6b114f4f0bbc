package contract

import (
	"context"

	"github.com/Mohsinsiddi/w3faucet/internal/chain"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Binder turns a contract name into a Handle on the provider's network.
type Binder struct {
	source Source
}

// NewBinder creates a Binder over src.
func NewBinder(src Source) *Binder {
	return &Binder{source: src}
}

// Bind reads the provider's network id, resolves the deployment and checks
// the ABI has the faucet methods. Every failure is a *ResolutionError.
func (b *Binder) Bind(ctx context.Context, name string, p provider.Provider) (*Handle, error) {
	networkID, err := chain.NewClient(p).NetworkID(ctx)
	if err != nil {
		return nil, &ResolutionError{Name: name, Err: err}
	}

	md, err := b.source.Resolve(name, networkID)
	if err != nil {
		return nil, &ResolutionError{Name: name, NetworkID: networkID, Err: err}
	}
	if err := checkFaucetABI(md.ABI); err != nil {
		return nil, &ResolutionError{Name: name, NetworkID: networkID, Err: err}
	}

	return NewHandle(md, p), nil
}

func checkFaucetABI(parsed abi.ABI) error {
	add, ok := parsed.Methods[MethodAddFunds]
	if !ok || !add.IsPayable() {
		return errors.Wrapf(ErrMissingMethod, "payable %s()", MethodAddFunds)
	}
	w, ok := parsed.Methods[MethodWithdraw]
	if !ok || len(w.Inputs) != 1 || w.Inputs[0].Type.T != abi.UintTy {
		return errors.Wrapf(ErrMissingMethod, "%s(uint256)", MethodWithdraw)
	}
	return nil
}
