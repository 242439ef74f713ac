package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/domain"
)

// Backend is the node access a bound contract pair needs.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Addresses locates the deployed contracts.
type Addresses struct {
	Ledger common.Address
	Game   common.Address
}

// Validate checks that both addresses are set.
func (a Addresses) Validate() error {
	if a.Ledger == (common.Address{}) {
		return errors.New("ledger address is not configured")
	}
	if a.Game == (common.Address{}) {
		return errors.New("game address is not configured")
	}
	return nil
}

// Bind creates proxies for the ledger and game contracts signed by opts.
// Every call made through them goes to the backend captured here.
func Bind(backend Backend, opts *bind.TransactOpts, addrs Addresses, gasLimit uint64) (*Ledger, *Game, error) {
	if backend == nil {
		return nil, nil, errors.Wrap(domain.ErrBind, "backend is nil")
	}
	if opts == nil || opts.Signer == nil {
		return nil, nil, errors.Wrap(domain.ErrBind, "signing identity is nil")
	}
	if err := addrs.Validate(); err != nil {
		return nil, nil, errors.Wrap(domain.ErrBind, err.Error())
	}

	ledger := &Ledger{
		contract: bind.NewBoundContract(addrs.Ledger, ledgerABI, backend, backend, backend),
		backend:  backend,
		opts:     opts,
		address:  addrs.Ledger,
	}
	game := &Game{
		contract: bind.NewBoundContract(addrs.Game, gameABI, backend, backend, backend),
		backend:  backend,
		opts:     opts,
		address:  addrs.Game,
		gasLimit: gasLimit,
	}

	return ledger, game, nil
}

// Pending is a submitted transaction that has not been awaited yet.
type Pending struct {
	method  string
	tx      *types.Transaction
	backend bind.DeployBackend
}

// NewPending tracks an already submitted transaction.
func NewPending(method string, tx *types.Transaction, backend bind.DeployBackend) *Pending {
	return &Pending{method: method, tx: tx, backend: backend}
}

// Hash returns the transaction hash.
func (p *Pending) Hash() common.Hash { return p.tx.Hash() }

// Method returns the contract method that produced the transaction.
func (p *Pending) Method() string { return p.method }

// Wait blocks until the transaction is mined.
// A reverted transaction is reported as ErrRemoteCall together with its receipt.
func (p *Pending) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, p.backend, p.tx)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrRemoteCall, "wait %s: %v", p.method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.Wrapf(domain.ErrRemoteCall, "%s reverted in tx %s", p.method, p.tx.Hash().Hex())
	}
	return receipt, nil
}

func transactOpts(ctx context.Context, base *bind.TransactOpts, value *big.Int, gasLimit uint64) *bind.TransactOpts {
	opts := *base
	opts.Context = ctx
	opts.Value = value
	if gasLimit > 0 {
		opts.GasLimit = gasLimit
	}
	return &opts
}

func transact(contract *bind.BoundContract, backend Backend, opts *bind.TransactOpts, method string, params ...interface{}) (*Pending, error) {
	tx, err := contract.Transact(opts, method, params...)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrRemoteCall, "%s: %v", method, err)
	}
	return NewPending(method, tx, backend), nil
}
