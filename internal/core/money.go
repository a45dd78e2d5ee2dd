// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmountCents caps a single amount so that sums over an account
// history stay far away from int64 overflow.
const maxAmountCents = int64(1_000_000_000_000)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to Money with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero on the third decimal place. Zero is a valid amount.
// Returns ErrInvalidAmount for invalid formats and negative values.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents
//	ParseAmount("0")      -> 0 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	// decimal accepts exponents; amounts typed by people never carry one
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents. Negative or oversized values are rejected.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(maxAmountCents)) {
		return Money{}, ErrAmountTooLarge
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Cents builds Money from a raw cents value.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// Decimal returns the amount as an exact decimal in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the value as a float64 for chart coordinates only.
// Use cents for calculations.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// String formats the amount with two decimal places, e.g. "12.34".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// MarshalText renders the amount as a decimal string so JSON payloads carry
// "12.34" rather than a float.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a decimal string. Negative amounts are allowed here
// because balances can go below zero; input amounts go through ParseAmount.
func (m *Money) UnmarshalText(b []byte) error {
	d, err := decimal.NewFromString(strings.TrimSpace(string(b)))
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = d.Mul(hundred).Round(0).IntPart()
	return nil
}

// Percent returns part/total*100 rounded half away from zero to one decimal
// place and formatted like "33.3%". A zero total yields "0.0%".
func Percent(part, total Money) string {
	if total.Cents == 0 {
		return "0.0%"
	}
	p := decimal.NewFromInt(part.Cents).
		Mul(hundred).
		DivRound(decimal.NewFromInt(total.Cents), 8).
		Round(1)
	return p.StringFixed(1) + "%"
}
