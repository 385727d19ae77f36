package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/auth"
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/gdg-garage/hotel-pms/internal/database"
	"github.com/gdg-garage/hotel-pms/internal/logging"
	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	bookings  *BookingHandler
	catalog   *CatalogHandler
	admin     context.Context
	assistant context.Context
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc := booking.NewService(db, booking.WithClock(func() time.Time { return now }), booking.WithLocation(time.UTC))

	admin := models.Profile{Name: "Owner", Email: "owner@example.com", Role: models.RoleAdmin}
	assistant := models.Profile{Name: "Desk", Email: "desk@example.com", Role: models.RoleAssistant}
	db.Create(&admin)
	db.Create(&assistant)

	return &testEnv{
		db:        db,
		bookings:  NewBookingHandler(svc, logging.Discard()),
		catalog:   NewCatalogHandler(db, logging.Discard()),
		admin:     auth.WithProfile(context.Background(), &admin),
		assistant: auth.WithProfile(context.Background(), &assistant),
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	return apiErr.GetStatus()
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func amount(v float64) *decimal.Decimal {
	d := dec(v)
	return &d
}

// seedRoom creates a room type, a room and a guest through the catalog
// handlers.
func (e *testEnv) seedRoom(t *testing.T, number string) (models.Room, models.Guest) {
	t.Helper()
	rtReq := &RoomTypeRequest{Body: RoomTypeBody{Name: "Standard", BasePrice: dec(1200)}}
	rt, err := e.catalog.HandleCreateRoomType(e.admin, rtReq)
	if err != nil {
		t.Fatalf("HandleCreateRoomType failed: %v", err)
	}
	room, err := e.catalog.HandleCreateRoom(e.admin, &RoomRequest{Body: RoomBody{RoomNumber: number, RoomTypeID: rt.Body.ID}})
	if err != nil {
		t.Fatalf("HandleCreateRoom failed: %v", err)
	}
	guest, err := e.catalog.HandleCreateGuest(e.assistant, &GuestRequest{Body: GuestBody{Name: "Alice", Email: "alice@example.com"}})
	if err != nil {
		t.Fatalf("HandleCreateGuest failed: %v", err)
	}
	return room.Body, guest.Body
}

func TestHandleCreateBooking(t *testing.T) {
	e := setupEnv(t)
	room, guest := e.seedRoom(t, "101")

	req := &CreateBookingRequest{}
	req.Body.GuestID = guest.ID
	req.Body.TotalPrice = amount(1) // ignored
	req.Body.Rooms = []RoomReservationBody{{RoomID: room.ID, CheckIn: "2024-01-01", CheckOut: "2024-01-05", Price: amount(4800)}}
	req.Body.Extras = []BookingExtraBody{{Label: "Breakfast", Price: amount(100), Quantity: 4}}

	resp, err := e.bookings.HandleCreateBooking(e.assistant, req)
	if err != nil {
		t.Fatalf("HandleCreateBooking returned error: %v", err)
	}
	if !resp.Body.TotalPrice.Equal(dec(5200)) {
		t.Errorf("expected total 5200, got %s", resp.Body.TotalPrice)
	}
	if !resp.Body.TotalPaid.IsZero() || !resp.Body.Remaining.Equal(dec(5200)) || resp.Body.Summary.Status != booking.PaymentUnpaid {
		t.Errorf("unexpected ledger fields: %+v", resp.Body.Summary)
	}

	// Overlapping stay for another guest.
	other, _ := e.catalog.HandleCreateGuest(e.assistant, &GuestRequest{Body: GuestBody{Name: "Bob"}})
	req.Body.GuestID = other.Body.ID
	req.Body.Rooms[0].CheckIn = "2024-01-03"
	req.Body.Rooms[0].CheckOut = "2024-01-06"
	_, err = e.bookings.HandleCreateBooking(e.assistant, req)
	if statusOf(t, err) != http.StatusBadRequest {
		t.Fatalf("expected 400 on conflict")
	}
	var apiErr *APIError
	errors.As(err, &apiErr)
	conflict, ok := apiErr.Details.(*booking.ConflictError)
	if !ok || len(conflict.Conflicts) != 1 || conflict.Conflicts[0].GuestName != "Alice" {
		t.Errorf("expected conflict detail naming Alice, got %+v", apiErr.Details)
	}

	// Missing price.
	req.Body.Rooms[0].Price = nil
	_, err = e.bookings.HandleCreateBooking(e.assistant, req)
	if statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 on missing price")
	}
}

func TestHandlePaymentsFlow(t *testing.T) {
	e := setupEnv(t)
	room, guest := e.seedRoom(t, "101")

	create := &CreateBookingRequest{}
	create.Body.GuestID = guest.ID
	create.Body.Rooms = []RoomReservationBody{{RoomID: room.ID, CheckIn: "2024-01-01", CheckOut: "2024-01-02", Price: amount(1000)}}
	b, err := e.bookings.HandleCreateBooking(e.assistant, create)
	if err != nil {
		t.Fatalf("HandleCreateBooking failed: %v", err)
	}

	pay := &RecordPaymentRequest{}
	pay.Body.BookingID = b.Body.ID
	pay.Body.Type = "partial"
	pay.Body.Amount = amount(600)
	first, err := e.bookings.HandleRecordPayment(e.assistant, pay)
	if err != nil {
		t.Fatalf("HandleRecordPayment failed: %v", err)
	}
	if !first.Body.Ledger.Remaining.Equal(dec(400)) || first.Body.Ledger.Status != booking.PaymentPartial {
		t.Errorf("unexpected ledger: %+v", first.Body.Ledger)
	}

	pay.Body.Amount = amount(500)
	_, err = e.bookings.HandleRecordPayment(e.assistant, pay)
	if statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected 400 on overpayment")
	}

	correct := &CorrectPaymentRequest{ID: first.Body.Payment.ID}
	correct.Body.Amount = dec(700)
	if _, err := e.bookings.HandleCorrectPayment(e.assistant, correct); statusOf(t, err) != http.StatusForbidden {
		t.Errorf("expected assistants to be refused payment corrections")
	}
	corrected, err := e.bookings.HandleCorrectPayment(e.admin, correct)
	if err != nil {
		t.Fatalf("HandleCorrectPayment failed: %v", err)
	}
	if !corrected.Body.Ledger.Remaining.Equal(dec(300)) {
		t.Errorf("expected remaining 300 after correction, got %s", corrected.Body.Ledger.Remaining)
	}

	pay.Body.Type = "full"
	pay.Body.Amount = nil
	full, err := e.bookings.HandleRecordPayment(e.assistant, pay)
	if err != nil {
		t.Fatalf("full payment failed: %v", err)
	}
	if !full.Body.Payment.Amount.Equal(dec(300)) || full.Body.Ledger.Status != booking.PaymentPaid {
		t.Errorf("unexpected full payment: %+v", full.Body)
	}

	if _, err := e.bookings.HandleDeletePayment(e.admin, &PaymentIDInput{ID: full.Body.Payment.ID}); err != nil {
		t.Fatalf("HandleDeletePayment failed: %v", err)
	}
	got, err := e.bookings.HandleGetBooking(e.assistant, &BookingIDInput{ID: b.Body.ID})
	if err != nil {
		t.Fatalf("HandleGetBooking failed: %v", err)
	}
	if !got.Body.TotalPaid.Equal(dec(700)) || !got.Body.Remaining.Equal(dec(300)) || len(got.Body.Payments) != 1 {
		t.Errorf("unexpected booking after payment delete: paid=%v remaining=%v payments=%d", got.Body.TotalPaid, got.Body.Remaining, len(got.Body.Payments))
	}
}

func TestHandleLifecycle(t *testing.T) {
	e := setupEnv(t)
	room, guest := e.seedRoom(t, "101")

	create := &CreateBookingRequest{}
	create.Body.GuestID = guest.ID
	create.Body.Rooms = []RoomReservationBody{{RoomID: room.ID, CheckIn: "2024-01-02", CheckOut: "2024-01-03", Price: amount(1000)}}
	b, _ := e.bookings.HandleCreateBooking(e.assistant, create)

	checkIn := &CheckInRequest{ID: b.Body.ID}
	checkIn.Body.ProofImageURL = "https://example.com/slip.jpg"
	_, err := e.bookings.HandleCheckIn(e.assistant, checkIn)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.GetStatus() != http.StatusBadRequest {
		t.Fatalf("expected 400 before the check-in date, got %v", err)
	}
	if se, ok := apiErr.Details.(*booking.StateError); !ok || se.Code != booking.CodeNotCheckInDate {
		t.Errorf("expected not_check_in_date detail, got %+v", apiErr.Details)
	}

	update := &UpdateBookingRequest{ID: b.Body.ID}
	update.Body.GuestID = guest.ID
	update.Body.Rooms = []RoomReservationBody{}
	updated, err := e.bookings.HandleUpdateBooking(e.assistant, update)
	if err != nil {
		t.Fatalf("HandleUpdateBooking failed: %v", err)
	}
	if len(updated.Body.Rooms) != 0 {
		t.Errorf("expected no rooms after update, got %d", len(updated.Body.Rooms))
	}

	cancelled, err := e.bookings.HandleCancel(e.assistant, &BookingIDInput{ID: b.Body.ID})
	if err != nil || cancelled.Body.Booking.Status != models.StatusCancelled {
		t.Fatalf("HandleCancel failed: %v", err)
	}

	if _, err := e.bookings.HandleDeleteBooking(e.assistant, &BookingIDInput{ID: b.Body.ID}); statusOf(t, err) != http.StatusForbidden {
		t.Errorf("expected assistants to be refused deletes")
	}
	res, err := e.bookings.HandleDeleteBooking(e.admin, &BookingIDInput{ID: b.Body.ID})
	if err != nil || !res.Body.Success {
		t.Fatalf("HandleDeleteBooking failed: %v", err)
	}
	if _, err := e.bookings.HandleGetBooking(e.admin, &BookingIDInput{ID: b.Body.ID}); statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected 404 after delete")
	}
}

func TestCatalogHandlers(t *testing.T) {
	e := setupEnv(t)
	room, guest := e.seedRoom(t, "101")

	if _, err := e.catalog.HandleCreateRoom(e.admin, &RoomRequest{Body: RoomBody{RoomNumber: "101", RoomTypeID: room.RoomTypeID}}); statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected duplicate room number to be rejected")
	}
	if _, err := e.catalog.HandleCreateRoom(e.admin, &RoomRequest{Body: RoomBody{RoomNumber: "201", RoomTypeID: 999}}); statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected unknown room type to be 404")
	}
	if _, err := e.catalog.HandleCreateRoomType(e.assistant, &RoomTypeRequest{Body: RoomTypeBody{Name: "Suite", BasePrice: dec(5000)}}); statusOf(t, err) != http.StatusForbidden {
		t.Errorf("expected assistants to be refused catalog writes")
	}

	unavailable := false
	updated, err := e.catalog.HandleUpdateRoom(e.admin, &UpdateRoomRequest{ID: room.ID, Body: RoomBody{RoomNumber: "101A", RoomTypeID: room.RoomTypeID, IsAvailable: &unavailable}})
	if err != nil {
		t.Fatalf("HandleUpdateRoom failed: %v", err)
	}
	if updated.Body.RoomNumber != "101A" || updated.Body.IsAvailable {
		t.Errorf("unexpected room after update: %+v", updated.Body)
	}

	if _, err := e.catalog.HandleDeleteGuest(e.assistant, &IDInput{ID: guest.ID}); err != nil {
		t.Fatalf("HandleDeleteGuest failed: %v", err)
	}
	active, _ := e.catalog.HandleListGuests(e.assistant, &ListInput{})
	all, _ := e.catalog.HandleListGuests(e.assistant, &ListInput{IncludeDeleted: true})
	if len(active.Body) != 0 || len(all.Body) != 1 || all.Body[0].DeletedAt == nil {
		t.Errorf("expected soft-deleted guest only in includeDeleted listing, got %d / %d", len(active.Body), len(all.Body))
	}
	if _, err := e.catalog.HandleDeleteGuest(e.assistant, &IDInput{ID: guest.ID}); statusOf(t, err) != http.StatusNotFound {
		t.Errorf("expected second delete to be 404")
	}

	extra, err := e.catalog.HandleCreateExtra(e.admin, &ExtraRequest{Body: ExtraBody{Name: "Honeymoon package", Price: dec(2500), IsPackage: true, IncludedNights: 3}})
	if err != nil {
		t.Fatalf("HandleCreateExtra failed: %v", err)
	}
	changed, err := e.catalog.HandleUpdateExtra(e.admin, &UpdateExtraRequest{ID: extra.Body.ID, Body: ExtraBody{Name: "Honeymoon package", Price: dec(2700)}})
	if err != nil {
		t.Fatalf("HandleUpdateExtra failed: %v", err)
	}
	if !changed.Body.Price.Equal(dec(2700)) || changed.Body.IsPackage {
		t.Errorf("unexpected extra after update: %+v", changed.Body)
	}

	profReq := &ProfileRequest{}
	profReq.Body.Email = "New.Hire@Example.com"
	profReq.Body.Role = models.RoleAssistant
	prof, err := e.catalog.HandleCreateProfile(e.admin, profReq)
	if err != nil {
		t.Fatalf("HandleCreateProfile failed: %v", err)
	}
	if prof.Body.Email != "new.hire@example.com" {
		t.Errorf("expected lower-cased email, got %q", prof.Body.Email)
	}
	if _, err := e.catalog.HandleCreateProfile(e.admin, profReq); statusOf(t, err) != http.StatusBadRequest {
		t.Errorf("expected duplicate profile to be rejected")
	}
}

func TestHTTPErrorMapping(t *testing.T) {
	log := logging.Discard()
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"Validation", &booking.ValidationError{Code: booking.CodeMissingField, Message: "x"}, http.StatusBadRequest},
		{"Conflict", &booking.ConflictError{}, http.StatusBadRequest},
		{"Overpayment", &booking.OverpaymentError{Attempted: dec(2), Remaining: dec(1)}, http.StatusBadRequest},
		{"State", &booking.StateError{Code: booking.CodeAlreadyCheckedIn, Message: "x"}, http.StatusBadRequest},
		{"NotFound", &booking.NotFoundError{Resource: "booking", ID: 1}, http.StatusNotFound},
		{"Persistence", &booking.PersistenceError{Op: "insert", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusOf(t, httpError(log, tt.err)); got != tt.status {
				t.Errorf("expected %d, got %d", tt.status, got)
			}
		})
	}

	var apiErr *APIError
	errors.As(httpError(log, &booking.PersistenceError{Op: "insert", Err: errors.New("disk full")}), &apiErr)
	if apiErr.Message != "internal server error" {
		t.Errorf("expected generic message for store failures, got %q", apiErr.Message)
	}
}
