// Package availability builds the read-only occupancy calendar. Results
// are cached in Redis per date range and dropped on every booking write.
package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/gdg-garage/hotel-pms/internal/logging"
	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/gdg-garage/hotel-pms/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const generationKey = "availability:generation"

// Stay is one occupied range of a room. Guest identity is left out; the
// calendar is public.
type Stay struct {
	BookingID uint   `json:"booking_id"`
	Status    string `json:"status"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

type RoomCalendar struct {
	RoomID      uint   `json:"room_id"`
	RoomNumber  string `json:"room_number"`
	RoomType    string `json:"room_type"`
	IsAvailable bool   `json:"is_available"`
	Stays       []Stay `json:"stays"`
}

type Calendar struct {
	db  *gorm.DB
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Logger
}

// NewCalendar builds the calendar. A nil rdb disables caching.
func NewCalendar(db *gorm.DB, rdb *redis.Client, ttl time.Duration, log *logrus.Logger) *Calendar {
	if log == nil {
		log = logging.Discard()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Calendar{db: db, rdb: rdb, ttl: ttl, log: log}
}

// Range returns every room with its non-cancelled stays overlapping
// [start, end), ordered by room number.
func (c *Calendar) Range(ctx context.Context, start, end time.Time) ([]RoomCalendar, error) {
	if !end.After(start) {
		return nil, &booking.ValidationError{Code: booking.CodeInvalidDateRange, Field: "endDate", Message: "endDate must be after startDate"}
	}

	key := ""
	if c.rdb != nil {
		key = c.cacheKey(ctx, start, end)
		if key != "" {
			if cached, ok := c.fromCache(ctx, key); ok {
				return cached, nil
			}
		}
	}

	calendar, err := c.compute(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if payload, err := json.Marshal(calendar); err == nil {
			if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
				c.log.WithError(err).Warn("failed to cache availability")
			}
		}
	}
	return calendar, nil
}

// Invalidate bumps the cache generation so every cached range is stale.
func (c *Calendar) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Incr(ctx, generationKey).Err()
}

type stayRow struct {
	BookingID uint
	RoomID    uint
	Status    string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (c *Calendar) compute(ctx context.Context, start, end time.Time) ([]RoomCalendar, error) {
	var rooms []models.Room
	if err := c.db.WithContext(ctx).Preload("RoomType", store.All.Scope()).Order("room_number").Find(&rooms).Error; err != nil {
		return nil, &booking.PersistenceError{Op: "load rooms", Err: err}
	}

	var rows []stayRow
	err := c.db.WithContext(ctx).Table("booking_rooms").
		Select("booking_rooms.booking_id, booking_rooms.room_id, bookings.status, booking_rooms.check_in, booking_rooms.check_out").
		Joins("JOIN bookings ON bookings.id = booking_rooms.booking_id").
		Where("bookings.status <> ?", models.StatusCancelled).
		Where("booking_rooms.check_in < ? AND booking_rooms.check_out > ?", end, start).
		Order("booking_rooms.check_in").
		Scan(&rows).Error
	if err != nil {
		return nil, &booking.PersistenceError{Op: "load stays", Err: err}
	}

	byRoom := make(map[uint][]Stay, len(rooms))
	for _, r := range rows {
		byRoom[r.RoomID] = append(byRoom[r.RoomID], Stay{
			BookingID: r.BookingID,
			Status:    r.Status,
			CheckIn:   booking.FormatDate(r.CheckIn),
			CheckOut:  booking.FormatDate(r.CheckOut),
		})
	}

	calendar := make([]RoomCalendar, 0, len(rooms))
	for _, room := range rooms {
		stays := byRoom[room.ID]
		if stays == nil {
			stays = []Stay{}
		}
		calendar = append(calendar, RoomCalendar{
			RoomID:      room.ID,
			RoomNumber:  room.RoomNumber,
			RoomType:    room.RoomType.Name,
			IsAvailable: room.IsAvailable,
			Stays:       stays,
		})
	}
	return calendar, nil
}

// cacheKey embeds the current generation. An empty key means Redis is
// unreachable and the cache is skipped for this request.
func (c *Calendar) cacheKey(ctx context.Context, start, end time.Time) string {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.WithError(err).Warn("availability cache unavailable")
		return ""
	}
	return fmt.Sprintf("availability:v%d:%s:%s", gen, booking.FormatDate(start), booking.FormatDate(end))
}

func (c *Calendar) fromCache(ctx context.Context, key string) ([]RoomCalendar, bool) {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).Warn("failed to read availability cache")
		}
		return nil, false
	}
	var calendar []RoomCalendar
	if err := json.Unmarshal(payload, &calendar); err != nil {
		return nil, false
	}
	return calendar, true
}
