package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusCheckedIn  BookingStatus = "checked_in"
	StatusCheckedOut BookingStatus = "checked_out"
	StatusCancelled  BookingStatus = "cancelled"
)

// Booking is the aggregate root. Rooms and Extras are owned by the booking
// and are always rewritten together with it.
type Booking struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"size:16;uniqueIndex;not null" json:"reference"`
	GuestID       uint            `gorm:"index;not null" json:"guest_id"`
	Guest         Guest           `gorm:"foreignKey:GuestID" json:"guest"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	Status        BookingStatus   `gorm:"size:20;not null;index" json:"status"`
	ProofImageURL string          `gorm:"size:1024" json:"proof_image_url,omitempty"`
	Note          string          `gorm:"type:text" json:"note,omitempty"`
	CheckedInAt   *time.Time      `json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time      `json:"checked_out_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Rooms    []BookingRoom  `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"booking_rooms"`
	Extras   []BookingExtra `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"booking_extras"`
	Payments []Payment      `gorm:"foreignKey:BookingID" json:"payments"`
}

// BookingRoom occupies its room for the half-open range [CheckIn, CheckOut).
type BookingRoom struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"index;not null" json:"booking_id"`
	RoomID    uint            `gorm:"index;not null" json:"room_id"`
	Room      Room            `gorm:"foreignKey:RoomID" json:"room"`
	CheckIn   time.Time       `gorm:"not null;index" json:"check_in"`
	CheckOut  time.Time       `gorm:"not null;index" json:"check_out"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	CreatedAt time.Time       `json:"created_at"`
}

// BookingExtra is a snapshot of the charge at booking time, not a reference
// to the Extra catalog.
type BookingExtra struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"index;not null" json:"booking_id"`
	Label     string          `gorm:"size:255;not null" json:"label"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}
