package booking

import (
	"testing"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		existingStart  string
		existingEnd    string
		candidateStart string
		candidateEnd   string
		want           bool
	}{
		{"BackToBack", "2024-01-01", "2024-01-05", "2024-01-05", "2024-01-08", false},
		{"BackToBackBefore", "2024-01-05", "2024-01-08", "2024-01-01", "2024-01-05", false},
		{"StartsDuring", "2024-01-01", "2024-01-05", "2024-01-04", "2024-01-08", true},
		{"EndsDuring", "2024-01-03", "2024-01-08", "2024-01-01", "2024-01-04", true},
		{"Contains", "2024-01-03", "2024-01-04", "2024-01-01", "2024-01-08", true},
		{"Contained", "2024-01-01", "2024-01-08", "2024-01-03", "2024-01-04", true},
		{"Identical", "2024-01-01", "2024-01-05", "2024-01-01", "2024-01-05", true},
		{"Disjoint", "2024-01-01", "2024-01-02", "2024-02-01", "2024-02-02", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(tt.existingStart), date(tt.existingEnd), date(tt.candidateStart), date(tt.candidateEnd))
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// The predicate is symmetric.
			if rev := Overlaps(date(tt.candidateStart), date(tt.candidateEnd), date(tt.existingStart), date(tt.existingEnd)); rev != got {
				t.Errorf("Overlaps() not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestBuildTotal(t *testing.T) {
	totals := BuildTotal(
		[]RoomCharge{{Price: dec(3000), Discount: dec(200)}, {Price: dec(1500.55)}},
		[]ExtraCharge{{Price: dec(99.99), Quantity: 3}, {Price: decimal.Zero, Quantity: 1}},
	)
	if !totals.Rooms.Equal(dec(4300.55)) {
		t.Errorf("Expected rooms 4300.55, got %s", totals.Rooms)
	}
	if !totals.Extras.Equal(dec(299.97)) {
		t.Errorf("Expected extras 299.97, got %s", totals.Extras)
	}
	if !totals.Total.Equal(dec(4600.52)) {
		t.Errorf("Expected total 4600.52, got %s", totals.Total)
	}
}

func TestSummarize(t *testing.T) {
	deleted := time.Now()
	pay := func(v float64) models.Payment { return models.Payment{Amount: dec(v)} }
	removed := pay(600)
	removed.DeletedAt = &deleted

	tests := []struct {
		name       string
		total      float64
		discount   float64
		payments   []models.Payment
		wantPaid   float64
		wantRemain float64
		wantStatus PaymentStatus
	}{
		{"Unpaid", 1000, 0, nil, 0, 1000, PaymentUnpaid},
		{"Partial", 1000, 0, []models.Payment{pay(500), pay(300)}, 800, 200, PaymentPartial},
		{"Paid", 1000, 0, []models.Payment{pay(800), pay(200)}, 1000, 0, PaymentPaid},
		{"DiscountCounts", 1000, 100, []models.Payment{pay(900)}, 900, 0, PaymentPaid},
		{"OverpaidClamped", 1000, 300, []models.Payment{pay(900)}, 900, 0, PaymentPaid},
		{"DeletedIgnored", 1000, 0, []models.Payment{pay(400), removed}, 400, 600, PaymentPartial},
		{"CentPrecision", 0.3, 0, []models.Payment{pay(0.1), pay(0.2)}, 0.3, 0, PaymentPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(dec(tt.total), dec(tt.discount), tt.payments)
			if !got.TotalPaid.Equal(dec(tt.wantPaid)) || !got.Remaining.Equal(dec(tt.wantRemain)) || got.Status != tt.wantStatus {
				t.Errorf("Summarize() = %+v, want paid=%v remaining=%v status=%s", got, tt.wantPaid, tt.wantRemain, tt.wantStatus)
			}
		})
	}
}

func TestBuildAggregateValidation(t *testing.T) {
	p := price
	room := func(mut func(*RoomLine)) Input {
		line := RoomLine{RoomID: 1, CheckIn: "2024-01-01", CheckOut: "2024-01-03", Price: p(2000)}
		mut(&line)
		return Input{GuestID: 1, Rooms: []RoomLine{line}}
	}

	tests := []struct {
		name string
		in   Input
		code string
	}{
		{"MissingGuest", Input{}, CodeMissingField},
		{"MissingRoomID", room(func(l *RoomLine) { l.RoomID = 0 }), CodeMissingField},
		{"MissingCheckIn", room(func(l *RoomLine) { l.CheckIn = "" }), CodeMissingField},
		{"MissingPrice", room(func(l *RoomLine) { l.Price = nil }), CodeMissingField},
		{"BadDate", room(func(l *RoomLine) { l.CheckOut = "03/01/2024" }), CodeInvalidDateRange},
		{"CheckOutBeforeCheckIn", room(func(l *RoomLine) { l.CheckOut = "2023-12-30" }), CodeInvalidDateRange},
		{"SameDay", room(func(l *RoomLine) { l.CheckOut = l.CheckIn }), CodeInvalidDateRange},
		{"ZeroPrice", room(func(l *RoomLine) { l.Price = p(0) }), CodeInvalidPrice},
		{"DiscountAbovePrice", room(func(l *RoomLine) { l.Discount = dec(2500) }), CodeInvalidPrice},
		{"NegativeBookingDiscount", Input{GuestID: 1, Discount: dec(-1)}, CodeInvalidAmount},
		{"ExtraWithoutLabel", Input{GuestID: 1, Extras: []ExtraLine{{Price: p(10)}}}, CodeMissingField},
		{"NegativeQuantity", Input{GuestID: 1, Extras: []ExtraLine{{Label: "Tour", Price: p(10), Quantity: -2}}}, CodeInvalidInput},
		{"DuplicateRoomInBody", Input{GuestID: 1, Rooms: []RoomLine{
			{RoomID: 1, CheckIn: "2024-01-01", CheckOut: "2024-01-04", Price: p(100)},
			{RoomID: 1, CheckIn: "2024-01-03", CheckOut: "2024-01-05", Price: p(100)},
		}}, CodeInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildAggregate(tt.in)
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Expected ValidationError, got %T (%v)", err, err)
			}
			if verr.Code != tt.code {
				t.Errorf("Expected code %s, got %s (%s)", tt.code, verr.Code, verr.Message)
			}
		})
	}

	t.Run("QuantityDefaultsToOne", func(t *testing.T) {
		agg, err := buildAggregate(Input{GuestID: 1, Extras: []ExtraLine{{Label: "Breakfast", Price: p(150)}}})
		if err != nil {
			t.Fatalf("buildAggregate failed: %v", err)
		}
		if agg.lines[0].Quantity != 1 {
			t.Errorf("Expected quantity 1, got %d", agg.lines[0].Quantity)
		}
	})
}

func TestConflictDescribe(t *testing.T) {
	other := Conflict{RoomNumber: "101", GuestName: "Alice", CheckIn: "2024-01-01", CheckOut: "2024-01-05"}
	if got := other.Describe(); got != "room 101 is already booked by Alice from 2024-01-01 to 2024-01-05" {
		t.Errorf("Unexpected message: %s", got)
	}
	same := other
	same.SameGuest = true
	same.Reference = "AB12CD34"
	if got := same.Describe(); got == other.Describe() {
		t.Error("Expected same-guest conflicts to be worded differently")
	}
}
