package models

import "github.com/shopspring/decimal"

// MoneyPlaces is the precision of every stored amount.
const MoneyPlaces = 2

func init() {
	// Amounts are JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
