package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Code identifies a supported currency.
type Code string

const (
	SGD Code = "SGD"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	MYR Code = "MYR"
	JPY Code = "JPY"
	CNY Code = "CNY"
	AUD Code = "AUD"
)

// Base is the reference currency. All rates are expressed as units of the
// currency per 1 unit of Base, and conversions route through it.
const Base = SGD

// rates is the static exchange table: units per 1 SGD.
var rates = map[Code]decimal.Decimal{
	SGD: decimal.NewFromInt(1),
	USD: decimal.RequireFromString("0.74"),
	EUR: decimal.RequireFromString("0.68"),
	GBP: decimal.RequireFromString("0.59"),
	MYR: decimal.RequireFromString("3.31"),
	JPY: decimal.RequireFromString("110.61"),
	CNY: decimal.RequireFromString("5.31"),
	AUD: decimal.RequireFromString("1.12"),
}

// Codes returns the supported currency codes in a stable order.
func Codes() []Code {
	return []Code{SGD, USD, EUR, GBP, MYR, JPY, CNY, AUD}
}

// Parse maps a user-supplied string onto a Code, ignoring case.
func Parse(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rates[c]; !ok {
		return "", fmt.Errorf("unknown currency %q", s)
	}

	return c, nil
}

// Rate returns how many units of c equal 1 SGD.
func Rate(c Code) (decimal.Decimal, error) {
	r, ok := rates[c]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unknown currency %q", c)
	}

	return r, nil
}

// Convert rescales amount from one currency to another via the base
// currency. Converting to the same currency returns the amount untouched,
// so repeated conversions never compound rounding error.
func Convert(amount decimal.Decimal, from, to Code) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	fromRate, err := Rate(from)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("converting from: %w", err)
	}

	toRate, err := Rate(to)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("converting to: %w", err)
	}

	return amount.Div(fromRate).Mul(toRate).Round(2), nil
}

// ToBase normalizes amount into SGD.
func ToBase(amount decimal.Decimal, from Code) (decimal.Decimal, error) {
	return Convert(amount, from, Base)
}
