// Package money converts between stored integer cents and KES amounts.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const Currency = "KES"

// FromCents returns the shilling amount for a cents value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// ToCents parses a shilling amount, rejecting fractions below one cent.
func ToCents(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two decimal places", amount)
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", amount)
	}
	return shifted.IntPart(), nil
}

// WholeShillings rounds up to the next shilling; mobile-money collections
// accept integer amounts only.
func WholeShillings(cents int64) int64 {
	return FromCents(cents).Ceil().IntPart()
}

// Format renders cents as "KES 1234.50".
func Format(cents int64) string {
	return fmt.Sprintf("%s %s", Currency, FromCents(cents).StringFixed(2))
}
