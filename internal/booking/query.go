package booking

import (
	"context"
	"errors"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/gdg-garage/hotel-pms/internal/store"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilter narrows a booking listing. Zero fields do not filter. With
// dates set, a booking matches when any of its reservations overlaps
// [Start, End).
type ListFilter struct {
	RoomID uint
	Start  *time.Time
	End    *time.Time
}

// withAggregate preloads everything a booking response shows. Deleted
// guests stay visible on their bookings; deleted payments do not.
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Guest", store.All.Scope()).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("check_in, id") }).
		Preload("Rooms.Room").
		Preload("Rooms.Room.RoomType", store.All.Scope()).
		Preload("Extras", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Scopes(store.Active.Scope()).Order("created_at, id") })
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Booking, error) {
	return s.load(ctx, s.db, id)
}

func (s *Service) load(ctx context.Context, db *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := withAggregate(db.WithContext(ctx)).First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "booking", ID: id}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load booking", Err: err}
	}
	return &booking, nil
}

// List returns bookings matching f, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Booking, error) {
	if f.Start != nil && f.End != nil && !f.End.After(*f.Start) {
		return nil, invalid(CodeInvalidDateRange, "endDate", "endDate must be after startDate")
	}

	q := withAggregate(s.db.WithContext(ctx))
	if f.RoomID != 0 || f.Start != nil || f.End != nil {
		sub := s.db.Model(&models.BookingRoom{}).Select("booking_id")
		if f.RoomID != 0 {
			sub = sub.Where("room_id = ?", f.RoomID)
		}
		if f.Start != nil {
			sub = sub.Where("check_out > ?", *f.Start)
		}
		if f.End != nil {
			sub = sub.Where("check_in < ?", *f.End)
		}
		q = q.Where("id IN (?)", sub)
	}

	var bookings []models.Booking
	if err := q.Order("created_at DESC, id DESC").Find(&bookings).Error; err != nil {
		return nil, &PersistenceError{Op: "list bookings", Err: err}
	}
	return bookings, nil
}

// Quote is a proposed price for one room over a date range.
type Quote struct {
	RoomID      uint            `json:"room_id"`
	RoomNumber  string          `json:"room_number"`
	RoomType    string          `json:"room_type"`
	CheckIn     string          `json:"check_in"`
	CheckOut    string          `json:"check_out"`
	Nights      int             `json:"nights"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	Price       decimal.Decimal `json:"price"`
}

// Quote prices a stay at the room type's base rate.
func (s *Service) Quote(ctx context.Context, roomID uint, checkIn, checkOut string) (*Quote, error) {
	start, err := ParseDate(checkIn)
	if err != nil {
		return nil, invalid(CodeInvalidDateRange, "checkIn", "check-in %q is not a YYYY-MM-DD date", checkIn)
	}
	end, err := ParseDate(checkOut)
	if err != nil {
		return nil, invalid(CodeInvalidDateRange, "checkOut", "check-out %q is not a YYYY-MM-DD date", checkOut)
	}
	if !end.After(start) {
		return nil, invalid(CodeInvalidDateRange, "checkOut", "check-out must be after check-in")
	}

	var room models.Room
	err = s.db.WithContext(ctx).Preload("RoomType", store.All.Scope()).First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "room", ID: roomID}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load room", Err: err}
	}

	nights := Nights(start, end)
	price := roundMoney(room.RoomType.BasePrice.Mul(decimal.NewFromInt(int64(nights))))
	if !price.IsPositive() {
		return nil, invalid(CodeInvalidPrice, "price", "room %s has no positive nightly rate", room.RoomNumber)
	}
	return &Quote{
		RoomID:      room.ID,
		RoomNumber:  room.RoomNumber,
		RoomType:    room.RoomType.Name,
		CheckIn:     FormatDate(start),
		CheckOut:    FormatDate(end),
		Nights:      nights,
		NightlyRate: room.RoomType.BasePrice,
		Price:       price,
	}, nil
}
