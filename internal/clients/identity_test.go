package clients

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hardhatMnemonic = "test test test test test test test test test test test junk"

var (
	hardhatAccount0 = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	hardhatAccount1 = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	chainID         = big.NewInt(31337)
)

func TestNewKeyIdentity(t *testing.T) {
	id, err := NewKeyIdentity(DevPrivateKey, chainID)
	require.NoError(t, err)
	assert.Equal(t, IdentityDev, id.Kind)
	assert.Equal(t, hardhatAccount0, id.Address)

	opts := id.TransactOpts()
	assert.Equal(t, hardhatAccount0, opts.From)
	assert.NotNil(t, opts.Signer)

	_, err = NewKeyIdentity("0xnothex", chainID)
	assert.Error(t, err)
}

func TestNewMnemonicIdentity(t *testing.T) {
	tests := []struct {
		name     string
		index    uint32
		expected common.Address
	}{
		{name: "first account", index: 0, expected: hardhatAccount0},
		{name: "second account", index: 1, expected: hardhatAccount1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewMnemonicIdentity(hardhatMnemonic, tt.index, chainID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id.Address)
		})
	}

	_, err := NewMnemonicIdentity("not a valid mnemonic", 0, chainID)
	assert.Error(t, err)
}

func TestNewExternalIdentity_RequiresEndpoint(t *testing.T) {
	_, err := NewExternalIdentity("", chainID)
	assert.Error(t, err)
}
