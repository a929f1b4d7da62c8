// money.go - Integer minor-currency units with decimal display formatting.
//
// All arithmetic in the system happens on Cents (int64) so there is no
// floating-point rounding anywhere on the write path. The decimal package
// is used only at the display boundary: accounting descriptions and
// statistics DTOs show major units with two decimals.
package retail

import "github.com/shopspring/decimal"

// Cents is an amount of money in minor currency units.
type Cents int64

// Decimal returns the amount in major units, e.g. 1250 -> 12.5.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount in major units with two decimals, e.g. "12.50".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}
