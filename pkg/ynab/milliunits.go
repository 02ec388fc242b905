package ynab

import (
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Milliunits represents 1/1000 of a currency unit
type Milliunits int64

// MilliunitsFromDecimal converts a major-unit amount to milliunits,
// dropping anything below a milliunit
func MilliunitsFromDecimal(amount decimal.Decimal) Milliunits {
	return Milliunits(amount.Shift(3).IntPart())
}

// Decimal returns the amount in major units
func (m Milliunits) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -3)
}

// Negate changes the sign of m to the opposite
func (m Milliunits) Negate() Milliunits {
	return m * -1
}

func (m Milliunits) String() string {
	return strconv.FormatInt(int64(m), 10)
}

// Format renders the amount in the given ISO currency, e.g. "$-5.00".
// Unknown codes fall back to "<amount> <code>".
func (m Milliunits) Format(isoCode string) string {
	cur := money.GetCurrency(isoCode)
	if cur == nil {
		return strings.TrimSpace(m.Decimal().StringFixed(2) + " " + isoCode)
	}
	minor := m.Decimal().Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
