package handlers

import (
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/gdg-garage/hotel-pms/internal/models"
)

// BookingView is a booking with its ledger state computed from the active
// payments.
type BookingView struct {
	models.Booking
	booking.Summary
}

func bookingView(b *models.Booking) BookingView {
	return BookingView{Booking: *b, Summary: booking.SummarizeBooking(b)}
}

func bookingViews(bookings []models.Booking) []BookingView {
	views := make([]BookingView, len(bookings))
	for i := range bookings {
		views[i] = bookingView(&bookings[i])
	}
	return views
}

type PaymentView struct {
	Payment models.Payment  `json:"payment"`
	Ledger  booking.Summary `json:"ledger"`
}

type SuccessResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}

func success() *SuccessResponse {
	res := &SuccessResponse{}
	res.Body.Success = true
	return res
}
