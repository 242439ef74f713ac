package domain

import (
	"math/big"
	"time"
)

// Account mirrors the ledger contract's per-address record.
// The ledger is the source of truth; the client only reads it.
type Account struct {
	Balance       *big.Int
	TotalDeposit  *big.Int
	TotalWithdraw *big.Int
	LastUpdate    time.Time
	IsActive      bool
}

// Covers reports whether the balance is at least wei.
func (a Account) Covers(wei *big.Int) bool {
	if a.Balance == nil || wei == nil {
		return false
	}
	return a.Balance.Cmp(wei) >= 0
}

// GameResult is the outcome emitted by the roulette contract for one bet.
type GameResult struct {
	Number    int
	BetAmount *big.Int
	WinAmount *big.Int
	IsWin     bool
}
