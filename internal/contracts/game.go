package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/domain"
)

// DefaultGasLimit is used for placeBetAndSpin when none is configured.
const DefaultGasLimit = 500_000

// Game is the Roulette contract proxy.
type Game struct {
	contract *bind.BoundContract
	backend  Backend
	opts     *bind.TransactOpts
	address  common.Address
	gasLimit uint64
}

// Address returns the contract address.
func (g *Game) Address() common.Address { return g.address }

// PlaceBetAndSpin stakes wei on the encoded choices and spins the wheel in one transaction.
func (g *Game) PlaceBetAndSpin(ctx context.Context, choices []uint64, wei *big.Int) (*Pending, error) {
	if len(choices) == 0 {
		return nil, errors.Wrap(domain.ErrValidation, "no choices to bet on")
	}

	encoded := make([]*big.Int, len(choices))
	for i, c := range choices {
		encoded[i] = new(big.Int).SetUint64(c)
	}

	gasLimit := g.gasLimit
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}

	return transact(g.contract, g.backend, transactOpts(ctx, g.opts, wei, gasLimit), "placeBetAndSpin", encoded)
}

// BetCounter returns the number of bets the contract has processed.
func (g *Game) BetCounter(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: g.opts.From}
	if err := g.contract.Call(opts, &out, "getbetCounter"); err != nil {
		return nil, errors.Wrapf(domain.ErrRemoteCall, "getbetCounter: %v", err)
	}
	if len(out) != 1 {
		return nil, errors.Wrapf(domain.ErrRemoteCall, "getbetCounter returned %d values", len(out))
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// SetAccountManager points the game at a ledger. Owner only.
func (g *Game) SetAccountManager(ctx context.Context, ledger common.Address) (*Pending, error) {
	return transact(g.contract, g.backend, transactOpts(ctx, g.opts, nil, 0), "setAccountManager", ledger)
}

type gameResultEvent struct {
	Result    *big.Int
	BetAmount *big.Int
	WinAmount *big.Int
	IsWin     bool
}

// ParseGameResult extracts the GameResult event from receipt logs. An absent,
// undecodable or off-wheel event is ErrMissingResultEvent.
func ParseGameResult(logs []*types.Log) (domain.GameResult, error) {
	id := gameABI.Events[eventGameResult].ID

	for _, l := range logs {
		if l == nil || len(l.Topics) == 0 || l.Topics[0] != id {
			continue
		}

		var ev gameResultEvent
		if err := gameABI.UnpackIntoInterface(&ev, eventGameResult, l.Data); err != nil {
			return domain.GameResult{}, errors.Wrapf(domain.ErrMissingResultEvent, "decode GameResult: %v", err)
		}
		if !ev.Result.IsInt64() || ev.Result.Int64() > domain.MaxNumber {
			return domain.GameResult{}, errors.Wrapf(domain.ErrMissingResultEvent, "GameResult number %s out of range", ev.Result)
		}

		return domain.GameResult{
			Number:    int(ev.Result.Int64()),
			BetAmount: ev.BetAmount,
			WinAmount: ev.WinAmount,
			IsWin:     ev.IsWin,
		}, nil
	}

	return domain.GameResult{}, domain.ErrMissingResultEvent
}

// DescribeLogs renders the auxiliary game events for debug logging.
// Logs that are not game events are skipped.
func DescribeLogs(logs []*types.Log) []string {
	var lines []string
	for _, l := range logs {
		if l == nil || len(l.Topics) == 0 {
			continue
		}
		ev, err := gameABI.EventByID(l.Topics[0])
		if err != nil {
			continue
		}

		values, err := ev.Inputs.NonIndexed().Unpack(l.Data)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: undecodable data", ev.Name))
			continue
		}

		switch ev.Name {
		case eventBetPlaced:
			player := common.Address{}
			if len(l.Topics) > 1 {
				player = common.BytesToAddress(l.Topics[1].Bytes())
			}
			lines = append(lines, fmt.Sprintf("BetPlaced player=%s amount=%v choices=%v", player.Hex(), values[0], values[1]))
		case eventSpinResult:
			lines = append(lines, fmt.Sprintf("SpinResult result=%v", values[0]))
		case eventDebug:
			lines = append(lines, fmt.Sprintf("Debug %v: %v", values[0], values[1]))
		case eventGameResult:
			lines = append(lines, fmt.Sprintf("GameResult result=%v bet=%v win=%v isWin=%v", values[0], values[1], values[2], values[3]))
		}
	}
	return lines
}
