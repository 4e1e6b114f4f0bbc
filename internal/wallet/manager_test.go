package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test accounts #0 and #1. Never fund on mainnet.
const (
	testPrivKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testPrivKeyHex1 = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	testSignerAddr1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func TestAddWithKeyDerivesAddress(t *testing.T) {
	m := NewManager(WithInMemoryStore())

	w, err := m.AddWithKey("dev", "0x"+testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.Equal(t, "w3faucet.dev", w.KeyRef)
	assert.True(t, w.IsDefault, "first wallet becomes default")
	assert.NotEmpty(t, w.CreatedAt)
}

func TestAddWithKeySecondIsNotDefault(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, err := m.AddWithKey("a", testPrivKeyHex)
	require.NoError(t, err)
	w, err := m.AddWithKey("b", testPrivKeyHex1)
	require.NoError(t, err)
	assert.False(t, w.IsDefault)
}

func TestAddWithKeyInvalid(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, err := m.AddWithKey("bad", "zz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestAddWithKeyDuplicate(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, err := m.AddWithKey("dev", testPrivKeyHex)
	require.NoError(t, err)
	_, err = m.AddWithKey("dev", testPrivKeyHex1)
	assert.ErrorIs(t, err, ErrWalletExists)
}

func TestGetMissing(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestRemoveDeletesKey(t *testing.T) {
	keys := NewInMemoryKeystore()
	m := NewManager(WithStore(&memStore{}), WithKeyStore(keys))
	w, err := m.AddWithKey("dev", testPrivKeyHex)
	require.NoError(t, err)

	require.NoError(t, m.Remove("dev"))
	_, err = keys.Retrieve(w.KeyRef)
	assert.Error(t, err)

	assert.ErrorIs(t, m.Remove("dev"), ErrWalletNotFound)
}

func TestListSorted(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, _ = m.AddWithKey("zeta", testPrivKeyHex)
	_, _ = m.AddWithKey("alpha", testPrivKeyHex1)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)
}

func TestSetDefault(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, _ = m.AddWithKey("a", testPrivKeyHex)
	_, _ = m.AddWithKey("b", testPrivKeyHex1)

	require.NoError(t, m.SetDefault("b"))
	d, err := m.Default()
	require.NoError(t, err)
	assert.Equal(t, "b", d.Name)

	assert.ErrorIs(t, m.SetDefault("c"), ErrWalletNotFound)
}

func TestDefaultEmpty(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, err := m.Default()
	assert.ErrorIs(t, err, ErrNoDefault)
}

func TestSignerByNameAndDefault(t *testing.T) {
	m := NewManager(WithInMemoryStore())
	_, _ = m.AddWithKey("a", testPrivKeyHex)
	_, _ = m.AddWithKey("b", testPrivKeyHex1)

	s, err := m.Signer("")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, s.Address())

	s, err = m.Signer("b")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr1, s.Address())
	assert.Equal(t, "b", s.Wallet().Name)

	_, err = m.Signer("c")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

// ---------------------------------------------------------------------------
// JSONStore
// ---------------------------------------------------------------------------

func TestJSONStoreRoundTripThroughManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	keys := NewInMemoryKeystore()

	m := NewManager(WithStore(NewJSONStore(path)), WithKeyStore(keys))
	_, err := m.AddWithKey("dev", testPrivKeyHex)
	require.NoError(t, err)

	m2 := NewManager(WithStore(NewJSONStore(path)), WithKeyStore(keys))
	w, err := m2.Get("dev")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.True(t, w.IsDefault)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), testPrivKeyHex, "private key must not be written to wallets.json")
}

func TestJSONStoreMissingFile(t *testing.T) {
	ws, err := NewJSONStore(filepath.Join(t.TempDir(), "none.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestJSONStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, os.WriteFile(path, []byte("[{"), 0o600))
	_, err := NewJSONStore(path).Load()
	assert.Error(t, err)
}

func TestNormaliseHexKey(t *testing.T) {
	assert.Equal(t, "abc123", normaliseHexKey("0xabc123"))
	assert.Equal(t, "abc123", normaliseHexKey("0Xabc123"))
	assert.Equal(t, "abc", normaliseHexKey("  0xabc  "))
	assert.Equal(t, "", normaliseHexKey("0x"))
	assert.Equal(t, "", normaliseHexKey(""))
}
