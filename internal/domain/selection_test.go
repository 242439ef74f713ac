package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_MutualExclusion(t *testing.T) {
	type step struct {
		number   *int
		category Category
	}
	num := func(n int) step { return step{number: &n} }
	cat := func(c Category) step { return step{category: c} }

	tests := []struct {
		name         string
		steps        []step
		wantNumber   int
		wantHasNum   bool
		wantCategory Category
	}{
		{
			name:       "single number",
			steps:      []step{num(7)},
			wantNumber: 7,
			wantHasNum: true,
		},
		{
			name:         "category replaces number",
			steps:        []step{num(7), cat(CategoryRed)},
			wantCategory: CategoryRed,
		},
		{
			name:       "number replaces category",
			steps:      []step{cat(CategoryOdd), num(0)},
			wantNumber: 0,
			wantHasNum: true,
		},
		{
			name:       "number replaces number",
			steps:      []step{num(3), num(36)},
			wantNumber: 36,
			wantHasNum: true,
		},
		{
			name:  "toggling the same number clears it",
			steps: []step{num(12), num(12)},
		},
		{
			name:  "toggling the same category clears it",
			steps: []step{cat(CategoryThirdDozen), cat(CategoryThirdDozen)},
		},
		{
			name:         "toggle twice then select again",
			steps:        []step{cat(CategoryLow), cat(CategoryLow), cat(CategoryHigh)},
			wantCategory: CategoryHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sel Selection
			var err error
			for _, s := range tt.steps {
				if s.number != nil {
					sel, err = sel.ToggleNumber(*s.number)
				} else {
					sel, err = sel.ToggleCategory(s.category)
				}
				require.NoError(t, err)

				_, hasNum := sel.Number()
				_, hasCat := sel.Category()
				assert.False(t, hasNum && hasCat, "number and category must never be set together")
			}

			n, hasNum := sel.Number()
			c, _ := sel.Category()
			assert.Equal(t, tt.wantHasNum, hasNum)
			if tt.wantHasNum {
				assert.Equal(t, tt.wantNumber, n)
			}
			assert.Equal(t, tt.wantCategory, c)
			assert.Equal(t, !tt.wantHasNum && tt.wantCategory == "", sel.IsEmpty())
		})
	}
}

func TestSelection_ToggleRejectsUnknownInput(t *testing.T) {
	var sel Selection
	sel, err := sel.ToggleNumber(5)
	require.NoError(t, err)

	_, err = sel.ToggleNumber(37)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = sel.ToggleNumber(-1)
	assert.True(t, errors.Is(err, ErrValidation))

	unchanged, err := sel.ToggleCategory(Category("column"))
	assert.True(t, errors.Is(err, ErrInvalidBetType))
	n, ok := unchanged.Number()
	assert.True(t, ok)
	assert.Equal(t, 5, n)
}

func TestChoiceTable_TotalAndInjective(t *testing.T) {
	seen := make(map[uint64]string)

	for n := 0; n <= MaxNumber; n++ {
		code, err := NumberCode(n)
		require.NoError(t, err)
		assert.Equal(t, uint64(n), code)
		seen[code] = "number"
	}

	for _, c := range Categories() {
		code, err := c.Code()
		require.NoError(t, err, "category %s", c)
		assert.Greater(t, code, uint64(MaxNumber))
		_, dup := seen[code]
		assert.False(t, dup, "code %d used twice", code)
		seen[code] = string(c)
	}

	assert.Len(t, seen, MaxNumber+1+len(Categories()))

	_, err := Category("corner").Code()
	assert.ErrorIs(t, err, ErrInvalidBetType)
	assert.Contains(t, err.Error(), `"corner"`)

	_, err = NumberCode(MaxNumber + 1)
	assert.ErrorIs(t, err, ErrInvalidBetType)
	assert.Contains(t, err.Error(), "number 37 out of range")
}

func TestSelection_Choices(t *testing.T) {
	var empty Selection
	_, err := empty.Choices()
	assert.ErrorIs(t, err, ErrValidation)

	sel, err := empty.ToggleNumber(17)
	require.NoError(t, err)
	choices, err := sel.Choices()
	require.NoError(t, err)
	assert.Equal(t, []uint64{17}, choices)
	assert.Equal(t, BetTypeSingle, sel.BetType())

	sel, err = sel.ToggleCategory(CategorySecondDozen)
	require.NoError(t, err)
	choices, err = sel.Choices()
	require.NoError(t, err)
	assert.Equal(t, []uint64{44}, choices)
	assert.Equal(t, "2nd12", sel.BetType())
}

func TestIsRed(t *testing.T) {
	assert.False(t, IsRed(0))
	assert.True(t, IsRed(1))
	assert.False(t, IsRed(2))
	assert.True(t, IsRed(36))
	assert.False(t, IsRed(35))
}
