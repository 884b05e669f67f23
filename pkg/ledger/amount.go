package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a number of units of a single currency. The number keeps the
// scale it was parsed with, so "25.50" renders back as "25.50".
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// NewAmount builds an Amount from an already-parsed decimal.
func NewAmount(number decimal.Decimal, currency string) Amount {
	return Amount{Number: number, Currency: currency}
}

// ParseAmount parses "<number> <currency>", e.g. "-25.50 USD".
func ParseAmount(s string) (Amount, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Amount{}, fmt.Errorf("ledger: invalid amount %q", s)
	}
	number, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Amount{}, fmt.Errorf("ledger: invalid amount %q: %w", s, err)
	}
	return Amount{Number: number, Currency: fields[1]}, nil
}

// MustParseAmount is ParseAmount for statically-known inputs; it panics on
// error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Neg returns the amount with the sign of its number flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

// IsZero reports whether the number is zero, regardless of currency.
func (a Amount) IsZero() bool { return a.Number.IsZero() }

// Equal reports whether two amounts have the same currency and numerically
// equal numbers; "25.5 USD" equals "25.50 USD".
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}

// String renders the amount as "<number> <currency>".
func (a Amount) String() string {
	return a.Number.String() + " " + a.Currency
}
