package service

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes displayed prices
const CurrencySymbol = "₹"

// formatPrice writes the shortest text that parses back to v. Plain decimals
// are used for ordinary magnitudes, exponent form for tiny or huge ones.
func formatPrice(v float64) string {
	if a := math.Abs(v); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatMoney renders a price rounded half away from zero to two decimals, e.g. ₹100.00
func FormatMoney(v float64) string {
	return CurrencySymbol + decimal.NewFromFloat(v).StringFixed(2)
}
