package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/models"
	"gorm.io/gorm"
)

// Stay is a candidate occupancy of one room for [CheckIn, CheckOut).
type Stay struct {
	RoomID   uint
	CheckIn  time.Time
	CheckOut time.Time
}

// Conflict is an existing reservation that overlaps a candidate stay.
type Conflict struct {
	RoomID     uint   `json:"room_id"`
	RoomNumber string `json:"room_number"`
	BookingID  uint   `json:"booking_id"`
	Reference  string `json:"reference"`
	GuestID    uint   `json:"guest_id"`
	GuestName  string `json:"guest_name"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	SameGuest  bool   `json:"same_guest"`
}

// Describe renders the conflict for staff. A same-guest conflict is most
// likely a duplicate submission and is worded that way.
func (c Conflict) Describe() string {
	if c.SameGuest {
		return fmt.Sprintf("%s already holds room %s from %s to %s under booking %s (possible duplicate)",
			c.GuestName, c.RoomNumber, c.CheckIn, c.CheckOut, c.Reference)
	}
	return fmt.Sprintf("room %s is already booked by %s from %s to %s",
		c.RoomNumber, c.GuestName, c.CheckIn, c.CheckOut)
}

// ConflictReport splits conflicts by whether they belong to the guest the
// candidate stay is for.
type ConflictReport struct {
	SameGuest   []Conflict `json:"same_guest"`
	OtherGuests []Conflict `json:"other_guests"`
}

func (r ConflictReport) Empty() bool {
	return len(r.SameGuest) == 0 && len(r.OtherGuests) == 0
}

// Conflicts lists other-guest conflicts before same-guest ones.
func (r ConflictReport) Conflicts() []Conflict {
	out := make([]Conflict, 0, len(r.OtherGuests)+len(r.SameGuest))
	out = append(out, r.OtherGuests...)
	return append(out, r.SameGuest...)
}

func (r *ConflictReport) merge(other ConflictReport) {
	r.SameGuest = append(r.SameGuest, other.SameGuest...)
	r.OtherGuests = append(r.OtherGuests, other.OtherGuests...)
}

// Validator checks candidate stays against the stored reservations. It
// only reads; bind it to the write transaction with WithTx so the check and
// the write see the same rows.
type Validator struct {
	db *gorm.DB
}

func NewValidator(db *gorm.DB) *Validator {
	return &Validator{db: db}
}

func (v *Validator) WithTx(tx *gorm.DB) *Validator {
	return &Validator{db: tx}
}

type reservationRow struct {
	BookingID  uint
	RoomID     uint
	CheckIn    time.Time
	CheckOut   time.Time
	RoomNumber string
	Reference  string
	GuestID    uint
	GuestName  string
}

// Validate reports every non-cancelled reservation on stay.RoomID that
// overlaps the stay. Rows of excludeBookingID are ignored so a booking can
// be re-validated against everything but itself.
func (v *Validator) Validate(ctx context.Context, guestID uint, stay Stay, excludeBookingID uint) (ConflictReport, error) {
	var report ConflictReport
	if !stay.CheckOut.After(stay.CheckIn) {
		return report, invalid(CodeInvalidDateRange, "checkOut", "check-out must be after check-in")
	}

	q := v.db.WithContext(ctx).Table("booking_rooms").
		Select(`booking_rooms.booking_id, booking_rooms.room_id, booking_rooms.check_in, booking_rooms.check_out,
			rooms.room_number, bookings.reference, bookings.guest_id, guests.name AS guest_name`).
		Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
		Joins("JOIN rooms ON rooms.id = booking_rooms.room_id").
		Joins("LEFT JOIN guests ON guests.id = bookings.guest_id").
		Where("booking_rooms.room_id = ?", stay.RoomID).
		Where("bookings.status <> ?", models.StatusCancelled).
		Where("booking_rooms.check_in < ? AND booking_rooms.check_out > ?", stay.CheckOut, stay.CheckIn)
	if excludeBookingID != 0 {
		q = q.Where("booking_rooms.booking_id <> ?", excludeBookingID)
	}

	var rows []reservationRow
	if err := q.Order("booking_rooms.check_in").Scan(&rows).Error; err != nil {
		return report, &PersistenceError{Op: "load reservations", Err: err}
	}

	for _, row := range rows {
		// The SQL range filter narrows the scan; Overlaps is the rule.
		if !Overlaps(row.CheckIn, row.CheckOut, stay.CheckIn, stay.CheckOut) {
			continue
		}
		c := Conflict{
			RoomID:     row.RoomID,
			RoomNumber: row.RoomNumber,
			BookingID:  row.BookingID,
			Reference:  row.Reference,
			GuestID:    row.GuestID,
			GuestName:  row.GuestName,
			CheckIn:    FormatDate(row.CheckIn),
			CheckOut:   FormatDate(row.CheckOut),
			SameGuest:  row.GuestID == guestID,
		}
		if c.SameGuest {
			report.SameGuest = append(report.SameGuest, c)
		} else {
			report.OtherGuests = append(report.OtherGuests, c)
		}
	}
	return report, nil
}

// ValidateAll validates every stay and returns a ConflictError carrying the
// full report when any stay conflicts.
func (v *Validator) ValidateAll(ctx context.Context, guestID uint, stays []Stay, excludeBookingID uint) error {
	var all ConflictReport
	for _, stay := range stays {
		report, err := v.Validate(ctx, guestID, stay, excludeBookingID)
		if err != nil {
			return err
		}
		all.merge(report)
	}
	if !all.Empty() {
		return &ConflictError{Conflicts: all.Conflicts()}
	}
	return nil
}
