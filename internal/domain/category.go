package domain

import "github.com/pkg/errors"

// MaxNumber is the highest pocket on a single-zero wheel.
const MaxNumber = 36

// BetTypeSingle is the bet type label recorded for straight-up number bets.
const BetTypeSingle = "single"

// Category is an outside bet covering a fixed group of numbers.
// Values double as the bet type label stored in bet history.
type Category string

const (
	CategoryRed         Category = "red"
	CategoryBlack       Category = "black"
	CategoryEven        Category = "even"
	CategoryOdd         Category = "odd"
	CategoryLow         Category = "1-18"
	CategoryHigh        Category = "19-36"
	CategoryFirstDozen  Category = "1st12"
	CategorySecondDozen Category = "2nd12"
	CategoryThirdDozen  Category = "3rd12"
)

// choice codes understood by the roulette contract, placed right above the 0-36 pockets
var categoryCodes = map[Category]uint64{
	CategoryRed:         37,
	CategoryBlack:       38,
	CategoryEven:        39,
	CategoryOdd:         40,
	CategoryLow:         41,
	CategoryHigh:        42,
	CategoryFirstDozen:  43,
	CategorySecondDozen: 44,
	CategoryThirdDozen:  45,
}

// Categories returns every category in table order.
func Categories() []Category {
	return []Category{
		CategoryRed, CategoryBlack,
		CategoryEven, CategoryOdd,
		CategoryLow, CategoryHigh,
		CategoryFirstDozen, CategorySecondDozen, CategoryThirdDozen,
	}
}

// Code returns the contract choice code for the category.
func (c Category) Code() (uint64, error) {
	code, ok := categoryCodes[c]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidBetType, "%q", string(c))
	}
	return code, nil
}

// Valid reports whether the category is part of the choice table.
func (c Category) Valid() bool {
	_, ok := categoryCodes[c]
	return ok
}

// Title is a human readable name for menus.
func (c Category) Title() string {
	switch c {
	case CategoryRed:
		return "Red"
	case CategoryBlack:
		return "Black"
	case CategoryEven:
		return "Even"
	case CategoryOdd:
		return "Odd"
	case CategoryLow:
		return "Low (1-18)"
	case CategoryHigh:
		return "High (19-36)"
	case CategoryFirstDozen:
		return "1st dozen (1-12)"
	case CategorySecondDozen:
		return "2nd dozen (13-24)"
	case CategoryThirdDozen:
		return "3rd dozen (25-36)"
	default:
		return string(c)
	}
}

// NumberCode returns the choice code of a straight-up bet on n.
func NumberCode(n int) (uint64, error) {
	if n < 0 || n > MaxNumber {
		return 0, errors.Wrapf(ErrInvalidBetType, "number %d out of range", n)
	}
	return uint64(n), nil
}

var redNumbers = map[int]struct{}{
	1: {}, 3: {}, 5: {}, 7: {}, 9: {}, 12: {}, 14: {}, 16: {}, 18: {},
	19: {}, 21: {}, 23: {}, 25: {}, 27: {}, 30: {}, 32: {}, 34: {}, 36: {},
}

// IsRed reports whether the pocket is red. Zero is neither red nor black.
func IsRed(n int) bool {
	_, ok := redNumbers[n]
	return ok
}
