package booking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/logging"
	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/gdg-garage/hotel-pms/internal/notifier"
	"github.com/gdg-garage/hotel-pms/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Invalidator drops cached read models derived from reservations.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service is the booking lifecycle manager. Every write runs in a single
// transaction: validation reads and row writes see the same locked rows.
type Service struct {
	db          *gorm.DB
	validator   *Validator
	notifier    notifier.Notifier
	invalidator Invalidator
	log         *logrus.Logger
	now         func() time.Time
	loc         *time.Location
}

type Option func(*Service)

func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithInvalidator(i Invalidator) Option {
	return func(s *Service) { s.invalidator = i }
}

func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the hotel time zone used for the check-in date gate.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:        db,
		validator: NewValidator(db),
		notifier:  notifier.Nop{},
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Validator returns the reservation validator bound to the service's store.
func (s *Service) Validator() *Validator { return s.validator }

// Create books at least one room for an active guest.
func (s *Service) Create(ctx context.Context, in Input) (*models.Booking, error) {
	if len(in.Rooms) == 0 {
		return nil, &ValidationError{Code: CodeMissingField, Field: "booking_rooms", Message: "at least one room is required"}
	}
	agg, err := buildAggregate(in)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Reference: newReference(),
		GuestID:   agg.guestID,
		Discount:  agg.discount,
		Status:    models.StatusPending,
		Note:      agg.note,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		totals, err := s.prepare(ctx, tx, agg, 0, 0)
		if err != nil {
			return err
		}
		booking.TotalPrice = totals.Total
		if err := tx.Omit(clause.Associations).Create(booking).Error; err != nil {
			return &PersistenceError{Op: "insert booking", Err: err}
		}
		return agg.insertChildren(ctx, tx, booking.ID)
	})
	if err != nil {
		return nil, persistence("create booking", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"reference":   booking.Reference,
		"guest_id":    booking.GuestID,
		"room_ids":    agg.roomIDs(),
		"total_price": booking.TotalPrice,
	}).Info("booking created")
	return s.committed(ctx, notifier.EventBookingCreated, booking.ID)
}

// Update replaces the booking body. An empty room list is allowed and
// leaves the booking with no reservations.
func (s *Service) Update(ctx context.Context, id uint, in Input) (*models.Booking, error) {
	agg, err := buildAggregate(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if booking.Status != models.StatusPending && booking.Status != models.StatusCheckedIn {
			return &StateError{Code: CodeInvalidTransition, Message: "a " + string(booking.Status) + " booking can no longer be edited"}
		}
		totals, err := s.prepare(ctx, tx, agg, id, booking.GuestID)
		if err != nil {
			return err
		}
		err = tx.Model(&models.Booking{}).Where("id = ?", id).Updates(map[string]any{
			"guest_id":    agg.guestID,
			"total_price": totals.Total,
			"discount":    agg.discount,
			"note":        agg.note,
			"updated_at":  s.now(),
		}).Error
		if err != nil {
			return &PersistenceError{Op: "update booking", Err: err}
		}
		return agg.replaceChildren(ctx, tx, id)
	})
	if err != nil {
		return nil, persistence("update booking", err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "room_ids": agg.roomIDs()}).Info("booking updated")
	return s.committed(ctx, notifier.EventBookingUpdated, id)
}

// prepare runs every check a booking body needs before it is written:
// guest, room locks, catalog extras, totals and reservation conflicts.
// currentGuest is the guest already on the booking; keeping it is allowed
// even after that guest was soft-deleted.
func (s *Service) prepare(ctx context.Context, tx *gorm.DB, agg *aggregate, excludeID, currentGuest uint) (Totals, error) {
	visibility := store.Active
	if currentGuest != 0 && agg.guestID == currentGuest {
		visibility = store.All
	}
	if _, err := store.First[models.Guest](tx.WithContext(ctx), agg.guestID, visibility); err != nil {
		if store.IsNotFound(err) {
			return Totals{}, &NotFoundError{Resource: "guest", ID: agg.guestID}
		}
		return Totals{}, &PersistenceError{Op: "load guest", Err: err}
	}
	if err := agg.lockRooms(ctx, tx); err != nil {
		return Totals{}, err
	}
	if err := agg.resolveExtras(ctx, tx); err != nil {
		return Totals{}, err
	}

	totals := agg.totals()
	if len(agg.rooms) > 0 && !totals.Total.IsPositive() {
		return Totals{}, invalid(CodeInvalidPrice, "total_price", "computed total must be positive")
	}

	if err := s.validator.WithTx(tx).ValidateAll(ctx, agg.guestID, agg.stays(), excludeID); err != nil {
		return Totals{}, err
	}
	return totals, nil
}

// Delete hard-deletes the booking with its reservations, extras and
// payments.
func (s *Service) Delete(ctx context.Context, id uint) error {
	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if booking, err = s.load(ctx, tx, id); err != nil {
			return err
		}
		for _, model := range []any{&models.Payment{}, &models.BookingExtra{}, &models.BookingRoom{}} {
			if err := tx.Where("booking_id = ?", id).Delete(model).Error; err != nil {
				return &PersistenceError{Op: "delete booking children", Err: err}
			}
		}
		if err := tx.Delete(&models.Booking{}, id).Error; err != nil {
			return &PersistenceError{Op: "delete booking", Err: err}
		}
		return nil
	})
	if err != nil {
		return persistence("delete booking", err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "reference": booking.Reference}).Info("booking deleted")
	s.invalidate(ctx)
	s.notify(ctx, eventFor(notifier.EventBookingDeleted, booking, s.now()))
	return nil
}

// Cancel moves a pending booking to cancelled. Its ledger is kept and its
// rooms are released.
func (s *Service) Cancel(ctx context.Context, id uint) (*models.Booking, error) {
	err := s.transition(ctx, id, func(b *models.Booking, now time.Time) (map[string]any, error) {
		if b.Status != models.StatusPending {
			return nil, &StateError{Code: CodeInvalidTransition, Message: "only pending bookings can be cancelled, booking is " + string(b.Status)}
		}
		return map[string]any{"status": models.StatusCancelled, "cancelled_at": now}, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("booking_id", id).Info("booking cancelled")
	return s.committed(ctx, notifier.EventBookingCancelled, id)
}

// CheckIn checks a pending booking in on the check-in date of any of its
// rooms, in the hotel's time zone.
func (s *Service) CheckIn(ctx context.Context, id uint, proofImageURL string) (*models.Booking, error) {
	proofImageURL = strings.TrimSpace(proofImageURL)
	if proofImageURL == "" {
		return nil, missingField("proofImageUrl")
	}

	err := s.transition(ctx, id, func(b *models.Booking, now time.Time) (map[string]any, error) {
		switch b.Status {
		case models.StatusCheckedIn:
			return nil, &StateError{Code: CodeAlreadyCheckedIn, Message: "booking is already checked in"}
		case models.StatusPending:
		default:
			return nil, &StateError{Code: CodeInvalidTransition, Message: "a " + string(b.Status) + " booking cannot be checked in"}
		}

		today := FormatDate(CalendarDate(now, s.loc))
		dates := make([]string, 0, len(b.Rooms))
		for _, r := range b.Rooms {
			if FormatDate(r.CheckIn) == today {
				return map[string]any{
					"status":          models.StatusCheckedIn,
					"proof_image_url": proofImageURL,
					"checked_in_at":   now,
				}, nil
			}
			dates = append(dates, FormatDate(r.CheckIn))
		}
		sort.Strings(dates)
		msg := "check-in is only possible on a room's check-in date"
		if len(dates) > 0 {
			msg += " (" + strings.Join(dates, ", ") + ")"
		}
		return nil, &StateError{Code: CodeNotCheckInDate, Message: msg + ", today is " + today}
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("booking_id", id).Info("booking checked in")
	return s.committed(ctx, notifier.EventBookingCheckedIn, id)
}

// CheckOut closes a checked-in booking.
func (s *Service) CheckOut(ctx context.Context, id uint) (*models.Booking, error) {
	err := s.transition(ctx, id, func(b *models.Booking, now time.Time) (map[string]any, error) {
		if b.Status != models.StatusCheckedIn {
			return nil, &StateError{Code: CodeInvalidTransition, Message: "only checked-in bookings can be checked out, booking is " + string(b.Status)}
		}
		return map[string]any{"status": models.StatusCheckedOut, "checked_out_at": now}, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("booking_id", id).Info("booking checked out")
	return s.committed(ctx, notifier.EventBookingCheckedOut, id)
}

// transition locks the booking, lets apply decide the column updates from
// its current state, and writes them.
func (s *Service) transition(ctx context.Context, id uint, apply func(b *models.Booking, now time.Time) (map[string]any, error)) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", id).Order("check_in").Find(&booking.Rooms).Error; err != nil {
			return &PersistenceError{Op: "load booking rooms", Err: err}
		}
		now := s.now()
		updates, err := apply(booking, now)
		if err != nil {
			return err
		}
		updates["updated_at"] = now
		if err := tx.Model(&models.Booking{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return &PersistenceError{Op: "update booking status", Err: err}
		}
		return nil
	})
	return persistence("update booking status", err)
}

// committed reloads a booking after its transaction committed and emits
// the event. Cache and notifier failures are logged only.
func (s *Service) committed(ctx context.Context, kind notifier.EventKind, id uint) (*models.Booking, error) {
	s.invalidate(ctx)
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, eventFor(kind, booking, s.now()))
	return booking, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("failed to invalidate availability cache")
	}
}

func (s *Service) notify(ctx context.Context, event notifier.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": event.BookingID,
			"kind":       event.Kind,
		}).Warn("failed to deliver booking notification")
	}
}

func eventFor(kind notifier.EventKind, b *models.Booking, at time.Time) notifier.Event {
	event := notifier.Event{
		Kind:       kind,
		BookingID:  b.ID,
		Reference:  b.Reference,
		GuestName:  b.Guest.Name,
		Status:     string(b.Status),
		TotalPrice: b.TotalPrice,
		At:         at,
	}
	var first, last time.Time
	for _, r := range b.Rooms {
		event.Rooms = append(event.Rooms, r.Room.RoomNumber)
		if first.IsZero() || r.CheckIn.Before(first) {
			first = r.CheckIn
		}
		if r.CheckOut.After(last) {
			last = r.CheckOut
		}
	}
	if !first.IsZero() {
		event.CheckIn = FormatDate(first)
		event.CheckOut = FormatDate(last)
	}
	return event
}

// lockBooking loads the booking row under a row lock.
func lockBooking(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "booking", ID: id}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "lock booking", Err: err}
	}
	return &booking, nil
}

func newReference() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
