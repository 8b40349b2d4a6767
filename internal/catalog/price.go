package catalog

import "github.com/shopspring/decimal"

// parsePrice converts the NUMERIC column text into a decimal.
func parsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
