package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Selection is the player's pending choice: a single number or one category, never both.
// The zero value is an empty selection.
type Selection struct {
	number    int
	hasNumber bool
	category  Category
}

// ToggleNumber selects n, or clears it when n is already selected.
// Any active category is cleared.
func (s Selection) ToggleNumber(n int) (Selection, error) {
	if n < 0 || n > MaxNumber {
		return s, NewValidationError(fmt.Sprintf("Number must be between 0 and %d", MaxNumber))
	}
	if s.hasNumber && s.number == n {
		return Selection{}, nil
	}
	return Selection{number: n, hasNumber: true}, nil
}

// ToggleCategory selects c, or clears it when c is already selected.
// Any selected number is cleared.
func (s Selection) ToggleCategory(c Category) (Selection, error) {
	if !c.Valid() {
		return s, errors.Wrapf(ErrInvalidBetType, "%q", string(c))
	}
	if s.category == c {
		return Selection{}, nil
	}
	return Selection{category: c}, nil
}

// Number returns the selected number, if any.
func (s Selection) Number() (int, bool) {
	return s.number, s.hasNumber
}

// Category returns the selected category, if any.
func (s Selection) Category() (Category, bool) {
	return s.category, s.category != ""
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return !s.hasNumber && s.category == ""
}

// BetType returns the label stored with the bet record.
func (s Selection) BetType() string {
	if s.hasNumber {
		return BetTypeSingle
	}
	return string(s.category)
}

// Choices encodes the selection into contract choice codes.
func (s Selection) Choices() ([]uint64, error) {
	switch {
	case s.hasNumber:
		code, err := NumberCode(s.number)
		if err != nil {
			return nil, err
		}
		return []uint64{code}, nil
	case s.category != "":
		code, err := s.category.Code()
		if err != nil {
			return nil, err
		}
		return []uint64{code}, nil
	default:
		return nil, NewValidationError("Please select a number or betting type")
	}
}

func (s Selection) String() string {
	switch {
	case s.hasNumber:
		return fmt.Sprintf("number %d", s.number)
	case s.category != "":
		return s.category.Title()
	default:
		return "nothing"
	}
}
