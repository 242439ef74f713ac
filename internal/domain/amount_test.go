package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  string
		shouldErr bool
	}{
		{name: "integer", input: "1", expected: "1"},
		{name: "fraction", input: "0.5", expected: "0.5"},
		{name: "leading dot", input: ".25", expected: "0.25"},
		{name: "comma separators stripped", input: "1,000.5", expected: "1000.5"},
		{name: "surrounding spaces", input: "  2.0 ", expected: "2"},
		{name: "eighteen decimals", input: "0.000000000000000001", expected: "0.000000000000000001"},
		{name: "empty", input: "", shouldErr: true},
		{name: "only dot", input: ".", shouldErr: true},
		{name: "zero", input: "0", shouldErr: true},
		{name: "zero fraction", input: "0.000", shouldErr: true},
		{name: "negative", input: "-1", shouldErr: true},
		{name: "letters", input: "1e18", shouldErr: true},
		{name: "two dots", input: "1.2.3", shouldErr: true},
		{name: "nineteen decimals", input: "0.0000000000000000001", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.shouldErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestWeiConversion(t *testing.T) {
	half := decimal.RequireFromString("0.5")
	wei := ToWei(half)
	assert.Equal(t, "500000000000000000", wei.String())
	assert.True(t, half.Equal(FromWei(wei)))

	oneEther, ok := new(big.Int).SetString("1000000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1", FormatEther(oneEther))
	assert.Equal(t, "17.5", FormatEther(ToWei(decimal.RequireFromString("17.5"))))
	assert.True(t, FromWei(nil).IsZero())
}

func TestAccount_Covers(t *testing.T) {
	account := Account{Balance: ToWei(decimal.NewFromInt(1))}

	assert.True(t, account.Covers(ToWei(decimal.RequireFromString("0.5"))))
	assert.True(t, account.Covers(ToWei(decimal.NewFromInt(1))))
	assert.False(t, account.Covers(ToWei(decimal.RequireFromString("1.000000000000000001"))))
	assert.False(t, Account{}.Covers(big.NewInt(1)))
}
