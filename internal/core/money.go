// Package core provides the billing domain model.
//
// This file contains the whole-Taka Amount type, the grand total
// derivation and parsing of amounts typed into bill forms.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in whole Taka. Bills never carry paisa.
type Amount int64

var ErrInvalidAmount = errors.New("invalid amount")

// Times returns the amount multiplied by a quantity.
func (a Amount) Times(qty int64) Amount {
	return Amount(int64(a) * qty)
}

// Float returns the amount as a float64 for the display formatters.
func (a Amount) Float() float64 {
	return float64(a)
}

// GrandTotal sums quantity * unit price over items. Stored item totals are
// ignored so stale values from a caller cannot leak into the result.
func GrandTotal(items []LineItem) Amount {
	var sum Amount
	for _, item := range items {
		sum += item.UnitPrice.Times(item.Quantity)
	}
	return sum
}

// ParseAmount converts a form value to whole Taka.
//
// Thousands separators are accepted ("1,250") and a fractional part is
// rounded half away from zero. Negative values and anything that is not a
// plain decimal number are rejected with ErrInvalidAmount.
//
// Examples:
//   ParseAmount("250") -> 250, nil
//   ParseAmount("1,250") -> 1250, nil
//   ParseAmount("99.5") -> 100, nil
//   ParseAmount("-1") -> 0, ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// decimal accepts exponents; form input never should
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	rounded := d.Round(0)
	if !rounded.IsInteger() || rounded.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, ErrInvalidAmount
	}
	return Amount(rounded.IntPart()), nil
}

// UnmarshalJSON accepts a whole number or a form string such as "1,250".
// Fractional JSON numbers are rejected; only form strings are rounded.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseAmount(s)
		if err != nil {
			return fmt.Errorf("%w: %q", err, s)
		}
		*a = v
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	if n > MaxAmount {
		return fmt.Errorf("%w: %s", ErrAmountTooLarge, data)
	}
	*a = Amount(n)
	return nil
}

// MaxAmount bounds unit prices, row totals and grand totals. Together with
// MaxQuantity it keeps quantity * price inside int64.
const MaxAmount = 1 << 40
