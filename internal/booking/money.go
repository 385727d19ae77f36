package booking

import (
	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/shopspring/decimal"
)

// roundMoney rounds to the stored precision. Every amount is rounded before
// it is compared or written.
func roundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(models.MoneyPlaces)
}

func formatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(models.MoneyPlaces)
}
