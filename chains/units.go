package chains

import (
	"math/big"
	"strings"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a human amount ("1.5") to the chain's smallest unit.
// Amounts with more fractional digits than decimals are rejected.
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, apperr.Validation("chains.ToBaseUnits", "invalid amount %q", amount)
	}
	if d.IsNegative() {
		return nil, apperr.Validation("chains.ToBaseUnits", "negative amount %q", amount)
	}

	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, apperr.Validation("chains.ToBaseUnits", "amount %q has more than %d decimals", amount, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatUnits renders a base-unit amount with the given decimals, without
// trailing zeros.
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// ParseAmount parses a human amount as a decimal, rejecting negatives.
func ParseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return decimal.Zero, apperr.Validation("chains.ParseAmount", "invalid amount %q", amount)
	}
	if d.IsNegative() {
		return decimal.Zero, apperr.Validation("chains.ParseAmount", "negative amount %q", amount)
	}
	return d, nil
}
