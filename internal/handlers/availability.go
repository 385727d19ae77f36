package handlers

import (
	"context"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/availability"
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/gdg-garage/hotel-pms/internal/logging"
	"github.com/sirupsen/logrus"
)

// defaultWindow is the calendar span shown when no end date is given.
const defaultWindow = 30 * 24 * time.Hour

type AvailabilityHandler struct {
	calendar *availability.Calendar
	log      *logrus.Logger
	now      func() time.Time
	loc      *time.Location
}

func NewAvailabilityHandler(calendar *availability.Calendar, loc *time.Location, log *logrus.Logger) *AvailabilityHandler {
	if log == nil {
		log = logging.Discard()
	}
	if loc == nil {
		loc = time.Local
	}
	return &AvailabilityHandler{calendar: calendar, log: log, now: time.Now, loc: loc}
}

type AvailabilityRequest struct {
	StartDate string `query:"startDate" format:"date" doc:"First day shown, defaults to today"`
	EndDate   string `query:"endDate" format:"date" doc:"Day after the last day shown, defaults to 30 days after startDate"`
}

type AvailabilityResponse struct {
	Body []availability.RoomCalendar
}

func (h *AvailabilityHandler) HandleAvailability(ctx context.Context, input *AvailabilityRequest) (*AvailabilityResponse, error) {
	start := booking.CalendarDate(h.now(), h.loc)
	if input.StartDate != "" {
		t, err := optionalDate("startDate", input.StartDate)
		if err != nil {
			return nil, httpError(h.log, err)
		}
		start = *t
	}
	end := start.Add(defaultWindow)
	if input.EndDate != "" {
		t, err := optionalDate("endDate", input.EndDate)
		if err != nil {
			return nil, httpError(h.log, err)
		}
		end = *t
	}

	rooms, err := h.calendar.Range(ctx, start, end)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &AvailabilityResponse{Body: rooms}, nil
}
