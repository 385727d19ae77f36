package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/gdg-garage/hotel-pms/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomLine is one requested room reservation.
type RoomLine struct {
	RoomID   uint
	CheckIn  string
	CheckOut string
	Price    *decimal.Decimal
	Discount decimal.Decimal
}

// ExtraLine is one requested extra charge. With ExtraID set, a missing label
// or price is copied from the catalog.
type ExtraLine struct {
	ExtraID  uint
	Label    string
	Price    *decimal.Decimal
	Quantity int
}

// Input is a full booking body. Update replaces the stored rooms and extras
// with exactly these.
type Input struct {
	GuestID  uint
	Rooms    []RoomLine
	Extras   []ExtraLine
	Discount decimal.Decimal
	Note     string
}

type RoomCharge struct {
	Price    decimal.Decimal
	Discount decimal.Decimal
}

type ExtraCharge struct {
	Price    decimal.Decimal
	Quantity int
}

type Totals struct {
	Rooms  decimal.Decimal `json:"rooms"`
	Extras decimal.Decimal `json:"extras"`
	Total  decimal.Decimal `json:"total"`
}

// BuildTotal sums a booking's charges. Room discounts are subtracted from
// the rooms subtotal; the booking-level discount is not part of the total.
func BuildTotal(rooms []RoomCharge, extras []ExtraCharge) Totals {
	roomsTotal, extrasTotal := decimal.Zero, decimal.Zero
	for _, r := range rooms {
		roomsTotal = roomsTotal.Add(roundMoney(r.Price)).Sub(roundMoney(r.Discount))
	}
	for _, e := range extras {
		extrasTotal = extrasTotal.Add(roundMoney(e.Price).Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return Totals{
		Rooms:  roomsTotal,
		Extras: extrasTotal,
		Total:  roomsTotal.Add(extrasTotal),
	}
}

// aggregate is a validated booking body. Catalog extras are resolved inside
// the write transaction.
type aggregate struct {
	guestID  uint
	rooms    []models.BookingRoom
	extras   []models.BookingExtra
	lines    []ExtraLine
	discount decimal.Decimal
	note     string
}

func buildAggregate(in Input) (*aggregate, error) {
	if in.GuestID == 0 {
		return nil, missingField("guestId")
	}
	if in.Discount.IsNegative() {
		return nil, invalid(CodeInvalidAmount, "discount", "discount must not be negative")
	}

	agg := &aggregate{
		guestID:  in.GuestID,
		discount: roundMoney(in.Discount),
		note:     strings.TrimSpace(in.Note),
	}

	for i, line := range in.Rooms {
		room, err := buildRoom(i, line)
		if err != nil {
			return nil, err
		}
		agg.rooms = append(agg.rooms, room)
	}
	if err := checkInternalOverlap(agg.rooms); err != nil {
		return nil, err
	}

	for i, line := range in.Extras {
		field := fmt.Sprintf("booking_extras[%d]", i)
		if line.ExtraID == 0 && strings.TrimSpace(line.Label) == "" {
			return nil, missingField(field + ".label")
		}
		if line.ExtraID == 0 && line.Price == nil {
			return nil, missingField(field + ".price")
		}
		if line.Price != nil && line.Price.IsNegative() {
			return nil, invalid(CodeInvalidPrice, field+".price", "extra price must not be negative")
		}
		if line.Quantity < 0 {
			return nil, invalid(CodeInvalidInput, field+".quantity", "quantity must be at least 1")
		}
		if line.Quantity == 0 {
			line.Quantity = 1
		}
		agg.lines = append(agg.lines, line)
	}
	return agg, nil
}

func buildRoom(i int, line RoomLine) (models.BookingRoom, error) {
	field := fmt.Sprintf("booking_rooms[%d]", i)
	switch {
	case line.RoomID == 0:
		return models.BookingRoom{}, missingField(field + ".roomId")
	case strings.TrimSpace(line.CheckIn) == "":
		return models.BookingRoom{}, missingField(field + ".checkIn")
	case strings.TrimSpace(line.CheckOut) == "":
		return models.BookingRoom{}, missingField(field + ".checkOut")
	case line.Price == nil:
		return models.BookingRoom{}, missingField(field + ".price")
	}

	checkIn, err := ParseDate(line.CheckIn)
	if err != nil {
		return models.BookingRoom{}, invalid(CodeInvalidDateRange, field+".checkIn", "check-in %q is not a YYYY-MM-DD date", line.CheckIn)
	}
	checkOut, err := ParseDate(line.CheckOut)
	if err != nil {
		return models.BookingRoom{}, invalid(CodeInvalidDateRange, field+".checkOut", "check-out %q is not a YYYY-MM-DD date", line.CheckOut)
	}
	if !checkOut.After(checkIn) {
		return models.BookingRoom{}, invalid(CodeInvalidDateRange, field, "check-out must be after check-in")
	}

	price := roundMoney(*line.Price)
	if !price.IsPositive() {
		return models.BookingRoom{}, invalid(CodeInvalidPrice, field+".price", "room price must be positive")
	}
	discount := roundMoney(line.Discount)
	if discount.IsNegative() || discount.GreaterThan(price) {
		return models.BookingRoom{}, invalid(CodeInvalidPrice, field+".discount", "room discount must be between 0 and the room price")
	}

	return models.BookingRoom{
		RoomID:   line.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Price:    price,
		Discount: discount,
	}, nil
}

// checkInternalOverlap rejects a body that books the same room twice for
// overlapping nights.
func checkInternalOverlap(rooms []models.BookingRoom) error {
	for i := range rooms {
		for j := i + 1; j < len(rooms); j++ {
			a, b := rooms[i], rooms[j]
			if a.RoomID == b.RoomID && Overlaps(a.CheckIn, a.CheckOut, b.CheckIn, b.CheckOut) {
				return invalid(CodeInvalidDateRange, fmt.Sprintf("booking_rooms[%d]", j),
					"room %d is listed twice for overlapping dates", b.RoomID)
			}
		}
	}
	return nil
}

// resolveExtras turns extra lines into denormalized BookingExtra rows,
// copying name and price from active catalog entries where needed.
func (a *aggregate) resolveExtras(ctx context.Context, tx *gorm.DB) error {
	a.extras = a.extras[:0]
	for _, line := range a.lines {
		extra := models.BookingExtra{Label: strings.TrimSpace(line.Label), Quantity: line.Quantity}
		if line.Price != nil {
			extra.Price = roundMoney(*line.Price)
		}
		if line.ExtraID != 0 {
			item, err := store.First[models.Extra](tx.WithContext(ctx), line.ExtraID, store.Active)
			if store.IsNotFound(err) {
				return &NotFoundError{Resource: "extra", ID: line.ExtraID}
			}
			if err != nil {
				return &PersistenceError{Op: "load extra", Err: err}
			}
			if extra.Label == "" {
				extra.Label = catalogLabel(*item)
			}
			if line.Price == nil {
				extra.Price = item.Price
			}
		}
		a.extras = append(a.extras, extra)
	}
	return nil
}

func catalogLabel(item models.Extra) string {
	if item.IsPackage && item.IncludedNights > 0 {
		return fmt.Sprintf("%s (%d nights)", item.Name, item.IncludedNights)
	}
	return item.Name
}

func (a *aggregate) totals() Totals {
	rooms := make([]RoomCharge, len(a.rooms))
	for i, r := range a.rooms {
		rooms[i] = RoomCharge{Price: r.Price, Discount: r.Discount}
	}
	extras := make([]ExtraCharge, len(a.extras))
	for i, e := range a.extras {
		extras[i] = ExtraCharge{Price: e.Price, Quantity: e.Quantity}
	}
	return BuildTotal(rooms, extras)
}

func (a *aggregate) stays() []Stay {
	stays := make([]Stay, len(a.rooms))
	for i, r := range a.rooms {
		stays[i] = Stay{RoomID: r.RoomID, CheckIn: r.CheckIn, CheckOut: r.CheckOut}
	}
	return stays
}

// roomIDs returns the distinct room ids in ascending order, the order rooms
// are locked in.
func (a *aggregate) roomIDs() []uint {
	seen := make(map[uint]bool, len(a.rooms))
	ids := make([]uint, 0, len(a.rooms))
	for _, r := range a.rooms {
		if !seen[r.RoomID] {
			seen[r.RoomID] = true
			ids = append(ids, r.RoomID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// lockRooms takes a row lock on every room of the aggregate and fails with
// NotFoundError for an unknown id.
func (a *aggregate) lockRooms(ctx context.Context, tx *gorm.DB) error {
	ids := a.roomIDs()
	if len(ids) == 0 {
		return nil
	}
	var rooms []models.Room
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id").Find(&rooms).Error
	if err != nil {
		return &PersistenceError{Op: "lock rooms", Err: err}
	}
	found := make(map[uint]bool, len(rooms))
	for _, r := range rooms {
		found[r.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return &NotFoundError{Resource: "room", ID: id}
		}
	}
	return nil
}

// insertChildren writes the aggregate's rooms and extras under bookingID.
func (a *aggregate) insertChildren(ctx context.Context, tx *gorm.DB, bookingID uint) error {
	// Each Create gets its own statement; a shared chain carries the first
	// model's schema into the second.
	insert := func() *gorm.DB { return tx.WithContext(ctx).Omit(clause.Associations) }
	if len(a.rooms) > 0 {
		for i := range a.rooms {
			a.rooms[i].ID = 0
			a.rooms[i].BookingID = bookingID
		}
		if err := insert().Create(&a.rooms).Error; err != nil {
			return &PersistenceError{Op: "insert booking rooms", Err: err}
		}
	}
	if len(a.extras) > 0 {
		for i := range a.extras {
			a.extras[i].ID = 0
			a.extras[i].BookingID = bookingID
		}
		if err := insert().Create(&a.extras).Error; err != nil {
			return &PersistenceError{Op: "insert booking extras", Err: err}
		}
	}
	return nil
}

// replaceChildren deletes the stored rooms and extras of bookingID and
// writes the aggregate's in their place.
func (a *aggregate) replaceChildren(ctx context.Context, tx *gorm.DB, bookingID uint) error {
	if err := tx.WithContext(ctx).Where("booking_id = ?", bookingID).Delete(&models.BookingRoom{}).Error; err != nil {
		return &PersistenceError{Op: "delete booking rooms", Err: err}
	}
	if err := tx.WithContext(ctx).Where("booking_id = ?", bookingID).Delete(&models.BookingExtra{}).Error; err != nil {
		return &PersistenceError{Op: "delete booking extras", Err: err}
	}
	return a.insertChildren(ctx, tx, bookingID)
}
