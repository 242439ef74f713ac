package roulette

import "github.com/vadiminshakov/roulette/internal/domain"

// Event is an input to the controller.
type Event interface {
	event()
}

// ToggleNumber selects or clears a straight-up number.
type ToggleNumber struct{ N int }

// ToggleCategory selects or clears an outside bet.
type ToggleCategory struct{ C domain.Category }

// PlaceBet submits the current selection with the entered amount in ether.
type PlaceBet struct{ Amount string }

// Deposit moves ether from the wallet into the ledger.
type Deposit struct{ Amount string }

// Withdraw moves ether from the ledger back to the wallet.
type Withdraw struct{ Amount string }

// RefreshBalance re-reads the ledger balance.
type RefreshBalance struct{}

func (ToggleNumber) event()   {}
func (ToggleCategory) event() {}
func (PlaceBet) event()       {}
func (Deposit) event()        {}
func (Withdraw) event()       {}
func (RefreshBalance) event() {}
