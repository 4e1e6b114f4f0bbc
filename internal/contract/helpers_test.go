package contract

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/require"
)

const (
	faucetAddr = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	fromAddr   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// writeArtifact writes a Truffle-style artifact for name deployed on the
// given network→address pairs.
func writeArtifact(t *testing.T, dir, name string, abiEntries []ABIEntry, networks map[string]string) string {
	t.Helper()
	nets := map[string]ArtifactNetwork{}
	for id, addr := range networks {
		nets[id] = ArtifactNetwork{Address: addr}
	}
	data, err := json.Marshal(Artifact{ContractName: name, ABI: abiEntries, Networks: nets})
	require.NoError(t, err)
	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// fakeProvider answers net_version and records eth_sendTransaction calls.
type fakeProvider struct {
	networkID string
	netErr    error
	sendErr   error
	sent      []provider.TxArgs
}

func (f *fakeProvider) Request(_ context.Context, result any, method string, params ...any) error {
	switch method {
	case provider.MethodNetVersion:
		if f.netErr != nil {
			return f.netErr
		}
		*(result.(*string)) = f.networkID
		return nil
	case provider.MethodSendTransaction:
		if f.sendErr != nil {
			return f.sendErr
		}
		f.sent = append(f.sent, params[0].(provider.TxArgs))
		*(result.(*common.Hash)) = common.HexToHash("0x01")
		return nil
	}
	return errors.New("unexpected method " + method)
}

func (f *fakeProvider) Subscribe(chan<- provider.Event) event.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	})
}

func (f *fakeProvider) Close() {}
