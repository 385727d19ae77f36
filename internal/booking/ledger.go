package booking

import (
	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

// Summary is the ledger state of a booking, always derived from its
// payments.
type Summary struct {
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    PaymentStatus   `json:"payment_status"`
}

// Summarize sums the active payments against totalPrice less discount.
// Remaining is clamped at zero.
func Summarize(totalPrice, discount decimal.Decimal, payments []models.Payment) Summary {
	paid := decimal.Zero
	for _, p := range payments {
		if p.DeletedAt != nil {
			continue
		}
		paid = paid.Add(roundMoney(p.Amount))
	}

	remaining := roundMoney(totalPrice).Sub(roundMoney(discount)).Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	status := PaymentUnpaid
	switch {
	case !remaining.IsPositive():
		status = PaymentPaid
	case paid.IsPositive():
		status = PaymentPartial
	}

	return Summary{
		TotalPaid: paid,
		Remaining: remaining,
		Status:    status,
	}
}

// SummarizeBooking summarizes a booking loaded with its payments.
func SummarizeBooking(b *models.Booking) Summary {
	return Summarize(b.TotalPrice, b.Discount, b.Payments)
}
