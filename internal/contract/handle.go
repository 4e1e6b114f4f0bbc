package contract

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Requester is the part of a provider a Handle sends through.
type Requester interface {
	Request(ctx context.Context, result any, method string, params ...any) error
}

// Handle is a Faucet deployment bound to a provider. It is read-only after
// Bind and safe to share.
type Handle struct {
	Name      string
	NetworkID string
	Address   common.Address
	Entries   []ABIEntry

	abi abi.ABI
	rpc Requester
}

// NewHandle binds md to r without going through a Binder.
func NewHandle(md *Metadata, r Requester) *Handle {
	return &Handle{
		Name:      md.Name,
		NetworkID: md.NetworkID,
		Address:   md.Address,
		Entries:   md.Entries,
		abi:       md.ABI,
		rpc:       r,
	}
}

// AddFunds sends addFunds() with value wei from the given account.
func (h *Handle) AddFunds(ctx context.Context, from common.Address, value *big.Int) (common.Hash, error) {
	return h.transact(ctx, from, value, MethodAddFunds)
}

// Withdraw sends withdraw(amount) from the given account.
func (h *Handle) Withdraw(ctx context.Context, from common.Address, amount *big.Int) (common.Hash, error) {
	return h.transact(ctx, from, nil, MethodWithdraw, amount)
}

func (h *Handle) transact(ctx context.Context, from common.Address, value *big.Int, method string, args ...interface{}) (common.Hash, error) {
	data, err := h.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "encoding %s", method)
	}

	to := h.Address
	tx := provider.TxArgs{From: from, To: &to, Data: data}
	if value != nil && value.Sign() > 0 {
		tx.Value = (*hexutil.Big)(value)
	}

	var hash common.Hash
	if err := h.rpc.Request(ctx, &hash, provider.MethodSendTransaction, tx); err != nil {
		return common.Hash{}, errors.Wrapf(err, "%s", method)
	}
	return hash, nil
}
