package clients

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/external"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// DevPrivateKey is the first account of a local hardhat node.
const DevPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// IdentityKind tells where the signing key lives.
type IdentityKind string

const (
	// IdentityInjected is a wallet reached through an external signer.
	IdentityInjected IdentityKind = "injected"
	// IdentityDev is a key held by this process.
	IdentityDev IdentityKind = "dev"
)

// Identity is an address able to sign transactions for one chain.
type Identity struct {
	Kind    IdentityKind
	Address common.Address
	opts    *bind.TransactOpts
}

// TransactOpts returns signing options bound to the identity.
func (i *Identity) TransactOpts() *bind.TransactOpts {
	opts := *i.opts
	return &opts
}

// NewKeyIdentity builds a dev identity from a hex private key.
func NewKeyIdentity(privateKeyHex string, chainID *big.Int) (*Identity, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"), "0X")

	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	return keyIdentity(privateKey, chainID)
}

// NewMnemonicIdentity derives the index-th account on m/44'/60'/0'/0 from a BIP-39 mnemonic.
func NewMnemonicIdentity(mnemonic string, index uint32, chainID *big.Int) (*Identity, error) {
	seed, err := bip39.NewSeedWithErrorChecking(strings.TrimSpace(mnemonic), "")
	if err != nil {
		return nil, errors.Wrap(err, "invalid mnemonic")
	}

	// chain params only select the xprv version bytes, which are never serialized here
	rootKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, errors.Wrap(err, "create master key")
	}

	child, err := deriveKeyFromPath(rootKey, fmt.Sprintf("44'/60'/0'/0/%d", index))
	if err != nil {
		return nil, err
	}

	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, errors.Wrap(err, "extract private key")
	}

	return keyIdentity(priv.ToECDSA(), chainID)
}

func keyIdentity(privateKey *ecdsa.PrivateKey, chainID *big.Int) (*Identity, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "create transactor")
	}

	return &Identity{Kind: IdentityDev, Address: opts.From, opts: opts}, nil
}

func deriveKeyFromPath(rootKey *hdkeychain.ExtendedKey, path string) (*hdkeychain.ExtendedKey, error) {
	key := rootKey
	for _, part := range strings.Split(path, "/") {
		hardened := strings.HasSuffix(part, "'")
		index64, err := strconv.ParseUint(strings.TrimSuffix(part, "'"), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid path component %s: %v", part, err)
		}

		index := uint32(index64)
		if hardened {
			index += hdkeychain.HardenedKeyStart
		}

		key, err = key.Derive(index)
		if err != nil {
			return nil, errors.Wrap(err, "derive key")
		}
	}
	return key, nil
}

// NewExternalIdentity connects to an external signer (clef) and uses its first account.
func NewExternalIdentity(endpoint string, chainID *big.Int) (*Identity, error) {
	if endpoint == "" {
		return nil, errors.New("external signer endpoint is not configured")
	}

	signer, err := external.NewExternalSigner(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "connect external signer %s", endpoint)
	}

	list := signer.Accounts()
	if len(list) == 0 {
		return nil, errors.New("external signer exposes no accounts")
	}
	account := list[0]

	opts := &bind.TransactOpts{
		From: account.Address,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != account.Address {
				return nil, bind.ErrNotAuthorized
			}
			return signer.SignTx(accounts.Account{Address: addr}, tx, chainID)
		},
	}

	return &Identity{Kind: IdentityInjected, Address: account.Address, opts: opts}, nil
}
