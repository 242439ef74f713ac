package contracts

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/domain"
)

// Ledger is the AccountManager proxy.
type Ledger struct {
	contract *bind.BoundContract
	backend  Backend
	opts     *bind.TransactOpts
	address  common.Address
}

// Address returns the contract address.
func (l *Ledger) Address() common.Address { return l.address }

// GetAccountInfo reads the account record of user.
func (l *Ledger) GetAccountInfo(ctx context.Context, user common.Address) (domain.Account, error) {
	return l.readAccount(ctx, "getAccountInfo", user)
}

// Accounts reads the public accounts mapping, same shape as GetAccountInfo.
func (l *Ledger) Accounts(ctx context.Context, user common.Address) (domain.Account, error) {
	return l.readAccount(ctx, "accounts", user)
}

func (l *Ledger) readAccount(ctx context.Context, method string, user common.Address) (domain.Account, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: l.opts.From}
	if err := l.contract.Call(opts, &out, method, user); err != nil {
		return domain.Account{}, errors.Wrapf(domain.ErrRemoteCall, "%s(%s): %v", method, user.Hex(), err)
	}
	if len(out) != 5 {
		return domain.Account{}, errors.Wrapf(domain.ErrRemoteCall, "%s returned %d values", method, len(out))
	}

	lastUpdate := *abi.ConvertType(out[3], new(big.Int)).(*big.Int)

	return domain.Account{
		Balance:       abi.ConvertType(out[0], new(big.Int)).(*big.Int),
		TotalDeposit:  abi.ConvertType(out[1], new(big.Int)).(*big.Int),
		TotalWithdraw: abi.ConvertType(out[2], new(big.Int)).(*big.Int),
		LastUpdate:    time.Unix(lastUpdate.Int64(), 0).UTC(),
		IsActive:      *abi.ConvertType(out[4], new(bool)).(*bool),
	}, nil
}

// ActivateAccount registers the caller with the ledger.
func (l *Ledger) ActivateAccount(ctx context.Context) (*Pending, error) {
	return transact(l.contract, l.backend, transactOpts(ctx, l.opts, nil, 0), "activateAccount")
}

// Deposit moves wei from the caller's wallet into the ledger.
func (l *Ledger) Deposit(ctx context.Context, wei *big.Int) (*Pending, error) {
	return transact(l.contract, l.backend, transactOpts(ctx, l.opts, wei, 0), "deposit")
}

// Withdraw moves wei from the ledger back to the caller's wallet.
func (l *Ledger) Withdraw(ctx context.Context, wei *big.Int) (*Pending, error) {
	return transact(l.contract, l.backend, transactOpts(ctx, l.opts, nil, 0), "withdraw", wei)
}

// TransferToRoulette moves wei from the caller's balance to the game contract.
func (l *Ledger) TransferToRoulette(ctx context.Context, wei *big.Int) (*Pending, error) {
	return transact(l.contract, l.backend, transactOpts(ctx, l.opts, nil, 0), "transferToRoulette", wei)
}

// HandleInitialBet credits player with an initial stake paid by the caller.
func (l *Ledger) HandleInitialBet(ctx context.Context, player common.Address, wei *big.Int) (*Pending, error) {
	return transact(l.contract, l.backend, transactOpts(ctx, l.opts, wei, 0), "handleInitialBet", player, wei)
}

// SubtractBalance debits player; only the game contract may call it successfully.
func (l *Ledger) SubtractBalance(ctx context.Context, player common.Address, wei *big.Int) (*Pending, error) {
	return transact(l.contract, l.backend, transactOpts(ctx, l.opts, nil, 0), "subtractBalance", player, wei)
}
