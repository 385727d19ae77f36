package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventBookingCreated    EventKind = "booking.created"
	EventBookingUpdated    EventKind = "booking.updated"
	EventBookingCancelled  EventKind = "booking.cancelled"
	EventBookingDeleted    EventKind = "booking.deleted"
	EventBookingCheckedIn  EventKind = "booking.checked_in"
	EventBookingCheckedOut EventKind = "booking.checked_out"
	EventPaymentRecorded   EventKind = "payment.recorded"
)

// Event describes a committed change to a booking. Delivery is best effort:
// a failed notification never rolls back the change.
type Event struct {
	Kind       EventKind        `json:"kind"`
	BookingID  uint             `json:"booking_id"`
	Reference  string           `json:"reference"`
	GuestName  string           `json:"guest_name"`
	Status     string           `json:"status"`
	Rooms      []string         `json:"rooms"`
	CheckIn    string           `json:"check_in,omitempty"`
	CheckOut   string           `json:"check_out,omitempty"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	At         time.Time        `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
