package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Extra is a catalog entry staff can pick from when adding charges to a
// booking.
type Extra struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsPackage      bool            `json:"is_package"`
	IncludedNights int             `json:"included_nights"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
}
