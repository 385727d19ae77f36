package handlers

import (
	"context"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/auth"
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/gdg-garage/hotel-pms/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	bookings *booking.Service
	log      *logrus.Logger
}

func NewBookingHandler(bookings *booking.Service, log *logrus.Logger) *BookingHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &BookingHandler{bookings: bookings, log: log}
}

type RoomReservationBody struct {
	RoomID   uint             `json:"roomId,omitempty" doc:"Room to reserve"`
	CheckIn  string           `json:"checkIn,omitempty" doc:"First night of the stay (YYYY-MM-DD)"`
	CheckOut string           `json:"checkOut,omitempty" doc:"Departure day, not occupied (YYYY-MM-DD)"`
	Price    *decimal.Decimal `json:"price,omitempty" doc:"Price of this stay before its discount"`
	Discount decimal.Decimal  `json:"discount,omitempty" doc:"Discount on this stay"`
}

type BookingExtraBody struct {
	ExtraID  uint             `json:"extraId,omitempty" doc:"Catalog extra to copy name and price from"`
	Label    string           `json:"label,omitempty" doc:"Label of the charge"`
	Price    *decimal.Decimal `json:"price,omitempty" doc:"Unit price"`
	Quantity int              `json:"quantity,omitempty" doc:"Quantity, defaults to 1"`
}

type BookingBody struct {
	GuestID    uint                  `json:"guestId,omitempty" doc:"Guest the booking is for"`
	Rooms      []RoomReservationBody `json:"booking_rooms,omitempty" doc:"Room reservations"`
	Extras     []BookingExtraBody    `json:"booking_extras,omitempty" doc:"Extra charges"`
	TotalPrice *decimal.Decimal      `json:"total_price,omitempty" doc:"Ignored, the total is computed from rooms and extras"`
	Discount   decimal.Decimal       `json:"discount,omitempty" doc:"Booking level discount, applied to the remaining balance"`
	Note       string                `json:"note,omitempty" doc:"Free text note"`
}

func (b BookingBody) input() booking.Input {
	in := booking.Input{GuestID: b.GuestID, Discount: b.Discount, Note: b.Note}
	for _, r := range b.Rooms {
		in.Rooms = append(in.Rooms, booking.RoomLine{
			RoomID:   r.RoomID,
			CheckIn:  r.CheckIn,
			CheckOut: r.CheckOut,
			Price:    r.Price,
			Discount: r.Discount,
		})
	}
	for _, e := range b.Extras {
		in.Extras = append(in.Extras, booking.ExtraLine{
			ExtraID:  e.ExtraID,
			Label:    e.Label,
			Price:    e.Price,
			Quantity: e.Quantity,
		})
	}
	return in
}

type BookingIDInput struct {
	ID uint `path:"id" doc:"Booking ID"`
}

type BookingResponse struct {
	Body BookingView
}

type ListBookingsRequest struct {
	RoomID    uint   `query:"roomId" doc:"Only bookings reserving this room"`
	StartDate string `query:"startDate" format:"date" doc:"Only bookings with a stay ending after this date"`
	EndDate   string `query:"endDate" format:"date" doc:"Only bookings with a stay starting before this date"`
}

type ListBookingsResponse struct {
	Body []BookingView
}

func (h *BookingHandler) HandleListBookings(ctx context.Context, input *ListBookingsRequest) (*ListBookingsResponse, error) {
	filter := booking.ListFilter{RoomID: input.RoomID}
	var err error
	if filter.Start, err = optionalDate("startDate", input.StartDate); err != nil {
		return nil, httpError(h.log, err)
	}
	if filter.End, err = optionalDate("endDate", input.EndDate); err != nil {
		return nil, httpError(h.log, err)
	}

	bookings, err := h.bookings.List(ctx, filter)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &ListBookingsResponse{Body: bookingViews(bookings)}, nil
}

func (h *BookingHandler) HandleGetBooking(ctx context.Context, input *BookingIDInput) (*BookingResponse, error) {
	b, err := h.bookings.Get(ctx, input.ID)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &BookingResponse{Body: bookingView(b)}, nil
}

type CreateBookingRequest struct {
	Body BookingBody
}

func (h *BookingHandler) HandleCreateBooking(ctx context.Context, input *CreateBookingRequest) (*BookingResponse, error) {
	b, err := h.bookings.Create(ctx, input.Body.input())
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &BookingResponse{Body: bookingView(b)}, nil
}

type UpdateBookingRequest struct {
	ID   uint `path:"id" doc:"Booking ID"`
	Body BookingBody
}

func (h *BookingHandler) HandleUpdateBooking(ctx context.Context, input *UpdateBookingRequest) (*BookingResponse, error) {
	b, err := h.bookings.Update(ctx, input.ID, input.Body.input())
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &BookingResponse{Body: bookingView(b)}, nil
}

func (h *BookingHandler) HandleDeleteBooking(ctx context.Context, input *BookingIDInput) (*SuccessResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := h.bookings.Delete(ctx, input.ID); err != nil {
		return nil, httpError(h.log, err)
	}
	return success(), nil
}

type CheckInRequest struct {
	ID   uint `path:"id" doc:"Booking ID"`
	Body struct {
		ProofImageURL string `json:"proofImageUrl,omitempty" doc:"Reference to the proof of payment image"`
	}
}

func (h *BookingHandler) HandleCheckIn(ctx context.Context, input *CheckInRequest) (*BookingResponse, error) {
	b, err := h.bookings.CheckIn(ctx, input.ID, input.Body.ProofImageURL)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &BookingResponse{Body: bookingView(b)}, nil
}

func (h *BookingHandler) HandleCheckOut(ctx context.Context, input *BookingIDInput) (*BookingResponse, error) {
	b, err := h.bookings.CheckOut(ctx, input.ID)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &BookingResponse{Body: bookingView(b)}, nil
}

func (h *BookingHandler) HandleCancel(ctx context.Context, input *BookingIDInput) (*BookingResponse, error) {
	b, err := h.bookings.Cancel(ctx, input.ID)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &BookingResponse{Body: bookingView(b)}, nil
}

type QuoteRequest struct {
	ID       uint   `path:"id" doc:"Room ID"`
	CheckIn  string `query:"checkIn" format:"date" required:"true" doc:"First night (YYYY-MM-DD)"`
	CheckOut string `query:"checkOut" format:"date" required:"true" doc:"Departure day (YYYY-MM-DD)"`
}

type QuoteResponse struct {
	Body booking.Quote
}

func (h *BookingHandler) HandleQuote(ctx context.Context, input *QuoteRequest) (*QuoteResponse, error) {
	q, err := h.bookings.Quote(ctx, input.ID, input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &QuoteResponse{Body: *q}, nil
}

func optionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := booking.ParseDate(value)
	if err != nil {
		return nil, &booking.ValidationError{Code: booking.CodeInvalidDateRange, Field: field, Message: field + " must be a YYYY-MM-DD date"}
	}
	return &t, nil
}
