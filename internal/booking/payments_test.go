package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/gdg-garage/hotel-pms/internal/notifier"
	"github.com/shopspring/decimal"
)

func TestPaymentLedger(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.book(t, f.alice, f.stay("101", "2024-01-01", "2024-01-02", 1000))

	record := func(kind PaymentKind, amount *decimal.Decimal) *PaymentResult {
		t.Helper()
		res, err := f.svc.RecordPayment(ctx, PaymentInput{BookingID: b.ID, Kind: kind, Amount: amount})
		if err != nil {
			t.Fatalf("RecordPayment(%s) failed: %v", kind, err)
		}
		return res
	}

	record(KindPartial, price(500))
	res := record(KindPartial, price(300))
	if !res.Summary.TotalPaid.Equal(dec(800)) || !res.Summary.Remaining.Equal(dec(200)) || res.Summary.Status != PaymentPartial {
		t.Fatalf("Unexpected summary after two partial payments: %+v", res.Summary)
	}
	if res.Payment.Method != models.DefaultPaymentMethod {
		t.Errorf("Expected default method, got %q", res.Payment.Method)
	}

	t.Run("OverpaymentRejected", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, PaymentInput{BookingID: b.ID, Kind: KindPartial, Amount: price(250)})
		var over *OverpaymentError
		if !errors.As(err, &over) {
			t.Fatalf("Expected OverpaymentError, got %v", err)
		}
		if !over.Attempted.Equal(dec(250)) || !over.Remaining.Equal(dec(200)) {
			t.Errorf("Unexpected overpayment detail: %+v", over)
		}
		got, _ := f.svc.Get(ctx, b.ID)
		if s := SummarizeBooking(got); !s.Remaining.Equal(dec(200)) || len(got.Payments) != 2 {
			t.Errorf("Expected ledger unchanged, got %+v with %d payments", s, len(got.Payments))
		}
	})

	full := record(KindFull, nil)
	if !full.Payment.Amount.Equal(dec(200)) {
		t.Errorf("Expected full payment of 200, got %s", full.Payment.Amount)
	}
	if full.Summary.Status != PaymentPaid || !full.Summary.Remaining.IsZero() {
		t.Errorf("Expected paid, got %+v", full.Summary)
	}

	t.Run("FullWhenSettled", func(t *testing.T) {
		_, err := f.svc.RecordPayment(ctx, PaymentInput{BookingID: b.ID, Kind: KindFull})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Code != CodeInvalidAmount {
			t.Errorf("Expected invalid_amount, got %v", err)
		}
	})

	t.Run("DeleteRestoresBalance", func(t *testing.T) {
		if err := f.svc.DeletePayment(ctx, full.Payment.ID); err != nil {
			t.Fatalf("DeletePayment failed: %v", err)
		}
		got, _ := f.svc.Get(ctx, b.ID)
		if s := SummarizeBooking(got); !s.Remaining.Equal(dec(200)) || s.Status != PaymentPartial {
			t.Errorf("Expected remaining 200 after delete, got %+v", s)
		}

		var nf *NotFoundError
		if err := f.svc.DeletePayment(ctx, full.Payment.ID); !errors.As(err, &nf) {
			t.Errorf("Expected NotFoundError deleting twice, got %v", err)
		}

		var stored models.Payment
		f.db.First(&stored, full.Payment.ID)
		if stored.DeletedAt == nil {
			t.Error("Expected payment row to be kept with deleted_at set")
		}
	})

	t.Run("Correct", func(t *testing.T) {
		corrected, err := f.svc.CorrectPayment(ctx, res.Payment.ID, dec(350))
		if err != nil {
			t.Fatalf("CorrectPayment failed: %v", err)
		}
		if !corrected.Payment.Amount.Equal(dec(350)) || !corrected.Summary.TotalPaid.Equal(dec(850)) || !corrected.Summary.Remaining.Equal(dec(150)) {
			t.Errorf("Unexpected correction result: %+v", corrected)
		}

		var verr *ValidationError
		if _, err := f.svc.CorrectPayment(ctx, res.Payment.ID, decimal.Zero); !errors.As(err, &verr) {
			t.Errorf("Expected validation error for zero amount, got %v", err)
		}
		if _, err := f.svc.CorrectPayment(ctx, res.Payment.ID, dec(0.001)); !errors.As(err, &verr) {
			t.Errorf("Expected validation error for an amount below one cent, got %v", err)
		}
		var nf *NotFoundError
		if _, err := f.svc.CorrectPayment(ctx, full.Payment.ID, dec(10)); !errors.As(err, &nf) {
			t.Errorf("Expected deleted payment to be not found, got %v", err)
		}
	})

	var paymentEvents int
	for _, e := range f.events {
		if e.Kind == notifier.EventPaymentRecorded {
			paymentEvents++
		}
	}
	if paymentEvents != 3 {
		t.Errorf("Expected 3 payment events, got %d", paymentEvents)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.book(t, f.alice, f.stay("101", "2024-01-01", "2024-01-02", 1000))

	tests := []struct {
		name string
		in   PaymentInput
		code string
	}{
		{"MissingBooking", PaymentInput{Kind: KindFull}, CodeMissingField},
		{"UnknownKind", PaymentInput{BookingID: b.ID, Kind: "deposit"}, CodeInvalidInput},
		{"PartialWithoutAmount", PaymentInput{BookingID: b.ID, Kind: KindPartial}, CodeMissingField},
		{"NegativeAmount", PaymentInput{BookingID: b.ID, Kind: KindPartial, Amount: price(-5)}, CodeInvalidAmount},
		{"RoundsToZero", PaymentInput{BookingID: b.ID, Kind: KindPartial, Amount: price(0.004)}, CodeInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordPayment(ctx, tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Code != tt.code {
				t.Errorf("Expected %s, got %v", tt.code, err)
			}
		})
	}

	var written int64
	f.db.Model(&models.Payment{}).Count(&written)
	if written != 0 {
		t.Errorf("Expected rejected payments to write nothing, found %d rows", written)
	}

	var nf *NotFoundError
	if _, err := f.svc.RecordPayment(ctx, PaymentInput{BookingID: 999, Kind: KindFull}); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}

	if _, err := f.svc.RecordPayment(ctx, PaymentInput{BookingID: b.ID, Kind: KindPartial, Amount: price(100), Method: "transfer"}); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if _, err := f.svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	var serr *StateError
	if _, err := f.svc.RecordPayment(ctx, PaymentInput{BookingID: b.ID, Kind: KindFull}); !errors.As(err, &serr) {
		t.Errorf("Expected StateError on cancelled booking, got %v", err)
	}
	got, _ := f.svc.Get(ctx, b.ID)
	if len(got.Payments) != 1 || got.Payments[0].Method != "transfer" {
		t.Errorf("Expected cancelled booking to keep its ledger, got %+v", got.Payments)
	}
}
