// Package core provides money parsing and formatting utilities.
//
// This file contains the currency formatter shared by every unit and the
// conversion from raw form text to the numeric amounts sent to the API.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyCode is the fixed suffix appended to every monetary value.
const CurrencyCode = "MAD"

// FormatMoney renders an amount fixed to two decimals followed by the currency code.
//
// Examples:
//
//	FormatMoney(decimal.NewFromInt(100))          -> "100.00 MAD"
//	FormatMoney(decimal.RequireFromString("2.5")) -> "2.50 MAD"
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " " + CurrencyCode
}

// SignedAmount renders a transaction amount with its derived sign.
// Withdrawals are prefixed with "-" and deposits with "+". The stored amount
// is expected to be non-negative; its absolute value is used either way.
func SignedAmount(kind TransactionKind, amount decimal.Decimal) string {
	sign := "+"
	if kind == Withdrawal {
		sign = "-"
	}
	return sign + FormatMoney(amount.Abs())
}

// ParseAmount converts the raw text of an amount input into the float64 sent
// to the API. It accepts dot or comma decimal separators. Positivity is not
// checked here: the input control and the server own that rule.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// RoundStat rounds an aggregate value to two decimals for display.
func RoundStat(v decimal.Decimal) string {
	return v.StringFixed(2)
}
