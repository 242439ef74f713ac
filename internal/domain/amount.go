package domain

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of wei digits in one ether.
const EtherDecimals = 18

var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// ParseAmount validates a player-entered ether amount.
// Comma separators are stripped; the result must be a positive plain decimal
// with at most 18 fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return decimal.Zero, NewValidationError("Please enter a bet amount")
	}
	if !amountPattern.MatchString(cleaned) {
		return decimal.Zero, NewValidationError("Invalid bet amount. Please enter a valid number.")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, NewValidationError("Invalid bet amount. Please enter a valid number.")
	}
	if !amount.IsPositive() {
		return decimal.Zero, NewValidationError("Bet amount must be greater than zero")
	}
	if -amount.Exponent() > EtherDecimals && !amount.Equal(amount.Truncate(EtherDecimals)) {
		return decimal.Zero, NewValidationError("Bet amount has too many decimal places")
	}

	return amount, nil
}

// ToWei converts an ether amount to wei, truncating below one wei.
func ToWei(ether decimal.Decimal) *big.Int {
	return ether.Shift(EtherDecimals).Truncate(0).BigInt()
}

// FromWei converts wei to ether.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}

// FormatEther renders wei as an ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	return FromWei(wei).String()
}
