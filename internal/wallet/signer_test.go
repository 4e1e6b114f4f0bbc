package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dynamicTx(chainID *big.Int) *types.Transaction {
	to := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     7,
		GasTipCap: big.NewInt(1_000_000_000),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       60000,
		To:        &to,
		Value:     big.NewInt(1_000_000_000_000_000_000),
	})
}

func TestSignTxRecoverableSender(t *testing.T) {
	keys := NewInMemoryKeystore()
	ref, _ := keys.Store("dev", testPrivKeyHex)
	s := NewSigner(&Wallet{Name: "dev", Address: testSignerAddr, KeyRef: ref}, keys)

	chainID := big.NewInt(1337)
	raw, err := s.SignTx(dynamicTx(chainID), chainID)
	require.NoError(t, err)

	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(raw))
	sender, err := types.Sender(types.NewLondonSigner(chainID), tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), sender)
	assert.Equal(t, uint64(7), tx.Nonce())
}

func TestSignTxMissingKey(t *testing.T) {
	s := NewSigner(&Wallet{Name: "dev", Address: testSignerAddr, KeyRef: "w3faucet.dev"}, NewInMemoryKeystore())
	_, err := s.SignTx(dynamicTx(big.NewInt(1)), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieving key")
}

func TestSignTxCorruptKey(t *testing.T) {
	keys := NewInMemoryKeystore()
	ref, _ := keys.Store("dev", "not-a-key")
	s := NewSigner(&Wallet{Name: "dev", KeyRef: ref}, keys)
	_, err := s.SignTx(dynamicTx(big.NewInt(1)), big.NewInt(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing private key")
}

func TestSignTxKeyWithPrefix(t *testing.T) {
	keys := NewInMemoryKeystore()
	ref, _ := keys.Store("dev", "0x"+testPrivKeyHex)
	s := NewSigner(&Wallet{Name: "dev", Address: testSignerAddr, KeyRef: ref}, keys)
	_, err := s.SignTx(dynamicTx(big.NewInt(1)), big.NewInt(1))
	assert.NoError(t, err)
}
