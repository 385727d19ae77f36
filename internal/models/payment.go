package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "cash"

// Payment is one ledger entry. Balances are always recomputed from the
// active entries; nothing caches a running total.
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"index;not null" json:"booking_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method    string          `gorm:"size:50;not null" json:"method"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}
