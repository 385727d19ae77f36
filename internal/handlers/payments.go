package handlers

import (
	"context"

	"github.com/gdg-garage/hotel-pms/internal/auth"
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	Body struct {
		BookingID uint             `json:"bookingId,omitempty" doc:"Booking the payment is for"`
		Type      string           `json:"type" enum:"full,partial" doc:"full settles the remaining balance, partial records amount"`
		Amount    *decimal.Decimal `json:"amount,omitempty" doc:"Amount of a partial payment"`
		Method    string           `json:"method,omitempty" doc:"Payment method, defaults to cash"`
	}
}

type PaymentResponse struct {
	Body PaymentView
}

func paymentResponse(res *booking.PaymentResult) *PaymentResponse {
	return &PaymentResponse{Body: PaymentView{Payment: res.Payment, Ledger: res.Summary}}
}

func (h *BookingHandler) HandleRecordPayment(ctx context.Context, input *RecordPaymentRequest) (*PaymentResponse, error) {
	res, err := h.bookings.RecordPayment(ctx, booking.PaymentInput{
		BookingID: input.Body.BookingID,
		Kind:      booking.PaymentKind(input.Body.Type),
		Amount:    input.Body.Amount,
		Method:    input.Body.Method,
	})
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return paymentResponse(res), nil
}

type CorrectPaymentRequest struct {
	ID   uint `path:"id" doc:"Payment ID"`
	Body struct {
		Amount decimal.Decimal `json:"amount" doc:"Corrected amount, must be positive"`
	}
}

func (h *BookingHandler) HandleCorrectPayment(ctx context.Context, input *CorrectPaymentRequest) (*PaymentResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	res, err := h.bookings.CorrectPayment(ctx, input.ID, input.Body.Amount)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return paymentResponse(res), nil
}

type PaymentIDInput struct {
	ID uint `path:"id" doc:"Payment ID"`
}

func (h *BookingHandler) HandleDeletePayment(ctx context.Context, input *PaymentIDInput) (*SuccessResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := h.bookings.DeletePayment(ctx, input.ID); err != nil {
		return nil, httpError(h.log, err)
	}
	return success(), nil
}
