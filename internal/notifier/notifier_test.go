package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Notify(_ context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiDeliversToEveryNotifier(t *testing.T) {
	failing := &recorder{err: errors.New("boom")}
	ok := &recorder{}
	m := Multi{failing, ok, Nop{}}

	err := m.Notify(context.Background(), Event{Kind: EventBookingCreated, BookingID: 7})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Expected joined error, got %v", err)
	}
	if len(ok.events) != 1 || ok.events[0].BookingID != 7 {
		t.Errorf("Expected healthy notifier to receive the event, got %+v", ok.events)
	}
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(Event{
		Kind:       EventBookingCreated,
		Reference:  "AB12CD34",
		GuestName:  "Jane Doe",
		Rooms:      []string{"101", "102"},
		CheckIn:    "2025-03-01",
		CheckOut:   "2025-03-04",
		TotalPrice: decimal.NewFromInt(4500),
	})

	for _, want := range []string{"New Booking", "AB12CD34", "Jane Doe", "101, 102", "2025-03-01 - 2025-03-04", "4500.00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message to contain %q, got:\n%s", want, msg)
		}
	}

	amount := decimal.NewFromFloat(250.5)
	payment := FormatMessage(Event{Kind: EventPaymentRecorded, Reference: "X", Amount: &amount})
	if !strings.Contains(payment, "250.50") {
		t.Errorf("Expected payment amount in message, got:\n%s", payment)
	}
}

func TestDiscordNotifierRequiresSession(t *testing.T) {
	n := NewDiscordNotifier(nil, "123", nil)
	if err := n.Notify(context.Background(), Event{}); err == nil {
		t.Error("Expected error for nil session")
	}
}

func TestNewPublishing(t *testing.T) {
	pub, err := newPublishing(Event{Kind: EventBookingCancelled, BookingID: 3})
	if err != nil {
		t.Fatalf("newPublishing failed: %v", err)
	}
	if pub.DeliveryMode != amqp.Persistent {
		t.Errorf("Expected persistent delivery, got %d", pub.DeliveryMode)
	}
	if pub.MessageId == "" || pub.Type != "booking.cancelled" {
		t.Errorf("Unexpected publishing metadata: %+v", pub)
	}

	var decoded Event
	if err := json.Unmarshal(pub.Body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded.BookingID != 3 {
		t.Errorf("Expected booking 3, got %d", decoded.BookingID)
	}
}
