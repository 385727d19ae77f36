package booking

import (
	"context"
	"strings"

	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/gdg-garage/hotel-pms/internal/notifier"
	"github.com/gdg-garage/hotel-pms/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentKind string

const (
	KindFull    PaymentKind = "full"
	KindPartial PaymentKind = "partial"
)

type PaymentInput struct {
	BookingID uint
	Kind      PaymentKind
	// Amount is required for partial payments and ignored for full ones.
	Amount *decimal.Decimal
	Method string
}

// PaymentResult is the written ledger entry with the booking's ledger
// state after it.
type PaymentResult struct {
	Payment models.Payment
	Summary Summary
}

// RecordPayment appends one ledger entry. A full payment settles the
// current remaining balance; a partial payment may not exceed it.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	if in.BookingID == 0 {
		return nil, missingField("bookingId")
	}
	if in.Kind != KindFull && in.Kind != KindPartial {
		return nil, invalid(CodeInvalidInput, "type", "payment type must be %q or %q", KindFull, KindPartial)
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	var (
		result  PaymentResult
		booking *models.Booking
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if booking, err = lockBooking(ctx, tx, in.BookingID); err != nil {
			return err
		}
		if booking.Status == models.StatusCancelled {
			return &StateError{Code: CodeInvalidTransition, Message: "payments cannot be recorded on a cancelled booking"}
		}
		payments, err := activePayments(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		before := Summarize(booking.TotalPrice, booking.Discount, payments)

		var amount decimal.Decimal
		switch in.Kind {
		case KindFull:
			if !before.Remaining.IsPositive() {
				return invalid(CodeInvalidAmount, "type", "booking is already fully paid")
			}
			amount = before.Remaining
		case KindPartial:
			if in.Amount == nil {
				return missingField("amount")
			}
			// Checked after rounding so no zero-amount entry is written.
			amount = roundMoney(*in.Amount)
			if !amount.IsPositive() {
				return invalid(CodeInvalidAmount, "amount", "amount must be at least 0.01")
			}
			if amount.GreaterThan(before.Remaining) {
				return &OverpaymentError{Attempted: amount, Remaining: before.Remaining}
			}
		}

		result.Payment = models.Payment{BookingID: booking.ID, Amount: amount, Method: method}
		if err := tx.Create(&result.Payment).Error; err != nil {
			return &PersistenceError{Op: "insert payment", Err: err}
		}
		result.Summary = Summarize(booking.TotalPrice, booking.Discount, append(payments, result.Payment))
		return nil
	})
	if err != nil {
		return nil, persistence("record payment", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"payment_id": result.Payment.ID,
		"kind":       in.Kind,
		"amount":     result.Payment.Amount,
		"remaining":  result.Summary.Remaining,
	}).Info("payment recorded")

	if full, err := s.Get(ctx, booking.ID); err == nil {
		event := eventFor(notifier.EventPaymentRecorded, full, s.now())
		event.Amount = &result.Payment.Amount
		s.notify(ctx, event)
	}
	return &result, nil
}

// CorrectPayment rewrites the amount of an active ledger entry.
func (s *Service) CorrectPayment(ctx context.Context, id uint, amount decimal.Decimal) (*PaymentResult, error) {
	amount = roundMoney(amount)
	if !amount.IsPositive() {
		return nil, invalid(CodeInvalidAmount, "amount", "amount must be at least 0.01")
	}

	var result PaymentResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := store.First[models.Payment](tx.WithContext(ctx), id, store.Active)
		if store.IsNotFound(err) {
			return &NotFoundError{Resource: "payment", ID: id}
		}
		if err != nil {
			return &PersistenceError{Op: "load payment", Err: err}
		}
		booking, err := lockBooking(ctx, tx, payment.BookingID)
		if err != nil {
			return err
		}
		payment.Amount = amount
		if err := tx.Model(payment).Update("amount", payment.Amount).Error; err != nil {
			return &PersistenceError{Op: "update payment", Err: err}
		}
		payments, err := activePayments(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		result.Payment = *payment
		result.Summary = Summarize(booking.TotalPrice, booking.Discount, payments)
		return nil
	})
	if err != nil {
		return nil, persistence("correct payment", err)
	}

	s.log.WithFields(logrus.Fields{"payment_id": id, "amount": result.Payment.Amount}).Info("payment corrected")
	return &result, nil
}

// DeletePayment soft-deletes a ledger entry; it no longer counts toward
// the booking's balance.
func (s *Service) DeletePayment(ctx context.Context, id uint) error {
	err := store.SoftDelete[models.Payment](s.db.WithContext(ctx), id, s.now())
	if store.IsNotFound(err) {
		return &NotFoundError{Resource: "payment", ID: id}
	}
	if err != nil {
		return &PersistenceError{Op: "delete payment", Err: err}
	}
	s.log.WithField("payment_id", id).Info("payment deleted")
	return nil
}

func activePayments(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := tx.WithContext(ctx).Scopes(store.Active.Scope()).
		Where("booking_id = ?", bookingID).Order("created_at, id").Find(&payments).Error
	if err != nil {
		return nil, &PersistenceError{Op: "load payments", Err: err}
	}
	return payments, nil
}
