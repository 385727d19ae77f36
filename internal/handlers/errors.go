package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/sirupsen/logrus"
)

// APIError is the body of every error response: {"error": ..., "details": ...}.
type APIError struct {
	status  int
	Message string `json:"error" doc:"Human readable error message"`
	Details any    `json:"details,omitempty" doc:"Structured detail, shape depends on the error"`
}

func (e *APIError) Error() string  { return e.Message }
func (e *APIError) GetStatus() int { return e.status }

func init() {
	huma.NewError = newAPIError
}

// newAPIError replaces huma's problem+json errors. Request validation
// failures are reported as 400 like every other input error.
func newAPIError(status int, msg string, errs ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	apiErr := &APIError{status: status, Message: msg}

	details := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			details = append(details, err.Error())
		}
	}
	if len(details) > 0 {
		apiErr.Details = details
	}
	return apiErr
}

// httpError maps domain errors to responses. Anything unrecognised is
// logged and reported as a generic 500.
func httpError(log *logrus.Logger, err error) error {
	var (
		statusErr  huma.StatusError
		validation *booking.ValidationError
		conflict   *booking.ConflictError
		overpay    *booking.OverpaymentError
		state      *booking.StateError
		notFound   *booking.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return &APIError{status: http.StatusBadRequest, Message: validation.Error(), Details: validation}
	case errors.As(err, &conflict):
		return &APIError{status: http.StatusBadRequest, Message: conflict.Error(), Details: conflict}
	case errors.As(err, &overpay):
		return &APIError{status: http.StatusBadRequest, Message: overpay.Error(), Details: overpay}
	case errors.As(err, &state):
		return &APIError{status: http.StatusBadRequest, Message: state.Error(), Details: state}
	case errors.As(err, &notFound):
		return &APIError{status: http.StatusNotFound, Message: notFound.Error(), Details: notFound}
	case errors.As(err, &statusErr):
		return err
	}

	log.WithError(err).Error("request failed")
	return &APIError{status: http.StatusInternalServerError, Message: "internal server error"}
}
