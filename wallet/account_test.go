package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intmax-network/go-rollup-wallet/poseidon"
	"github.com/intmax-network/go-rollup-wallet/types"
)

func TestAccountFromSeedDeterministic(t *testing.T) {
	first := AccountFromSeed("alice")
	second := AccountFromSeed("alice")
	require.Equal(t, first, second)

	other := AccountFromSeed("bob")
	require.NotEqual(t, first.PrivateKey, other.PrivateKey)
	require.NotEqual(t, first.Address, other.Address)
}

func TestAccountKeyDerivation(t *testing.T) {
	account := AccountFromSeed("alice")
	want := types.Hash(poseidon.TwoToOne(account.PrivateKey, types.ZeroHash))
	require.Equal(t, want, account.PublicKey)
	require.Equal(t, account.PublicKey, account.Address)

	for _, element := range account.PrivateKey {
		require.True(t, element < types.FieldOrder)
	}
}

func TestNewAccountDistinct(t *testing.T) {
	first, err := NewAccount()
	require.NoError(t, err)
	second, err := NewAccount()
	require.NoError(t, err)
	require.NotEqual(t, first.PrivateKey, second.PrivateKey)
}

func TestRandomHashCanonical(t *testing.T) {
	for i := 0; i < 8; i++ {
		h, err := RandomHash()
		require.NoError(t, err)
		for _, element := range h {
			require.True(t, element < types.FieldOrder)
		}
	}
}
