package handlers

import (
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/hotel-pms/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth         *auth.AuthHandler
	Bookings     *BookingHandler
	Catalog      *CatalogHandler
	Availability *AvailabilityHandler
}

// staff marks an operation as requiring a signed-in staff member.
func staff(tag string) func(o *huma.Operation) {
	return func(o *huma.Operation) {
		o.Tags = []string{tag}
		o.DefaultStatus = http.StatusOK
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"bearerAuth": {}}}
	}
}

func public(tag string) func(o *huma.Operation) {
	return func(o *huma.Operation) {
		o.Tags = []string{tag}
		o.DefaultStatus = http.StatusOK
	}
}

func RegisterRoutes(r *chi.Mux, h Handlers, log *logrus.Logger) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Hotel PMS API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	// Money travels as a JSON number.
	config.Components.Schemas.RegisterTypeAlias(reflect.TypeOf(decimal.Decimal{}), reflect.TypeOf(float64(0)))
	api := humachi.New(r, config)
	api.UseMiddleware(h.Auth.Middleware(api))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/login", h.Auth.HandleLogin)
	r.Get("/auth/callback", h.Auth.HandleCallback)
	r.Post("/auth/logout", h.Auth.HandleLogout)

	huma.Get(api, "/availability", h.Availability.HandleAvailability, public("Availability"))

	// Protected routes
	huma.Get(api, "/me", h.Auth.HandleMe, staff("Staff"))
	huma.Get(api, "/profiles", h.Catalog.HandleListProfiles, staff("Staff"))
	huma.Post(api, "/profiles", h.Catalog.HandleCreateProfile, staff("Staff"))

	huma.Get(api, "/bookings", h.Bookings.HandleListBookings, staff("Bookings"))
	huma.Post(api, "/bookings", h.Bookings.HandleCreateBooking, staff("Bookings"))
	huma.Get(api, "/bookings/{id}", h.Bookings.HandleGetBooking, staff("Bookings"))
	huma.Put(api, "/bookings/{id}", h.Bookings.HandleUpdateBooking, staff("Bookings"))
	huma.Delete(api, "/bookings/{id}", h.Bookings.HandleDeleteBooking, staff("Bookings"))
	huma.Post(api, "/bookings/{id}/check-in", h.Bookings.HandleCheckIn, staff("Bookings"))
	huma.Post(api, "/bookings/{id}/check-out", h.Bookings.HandleCheckOut, staff("Bookings"))
	huma.Post(api, "/bookings/{id}/cancel", h.Bookings.HandleCancel, staff("Bookings"))

	huma.Post(api, "/payments", h.Bookings.HandleRecordPayment, staff("Payments"))
	huma.Put(api, "/payments/{id}", h.Bookings.HandleCorrectPayment, staff("Payments"))
	huma.Delete(api, "/payments/{id}", h.Bookings.HandleDeletePayment, staff("Payments"))

	huma.Get(api, "/room-types", h.Catalog.HandleListRoomTypes, staff("Rooms"))
	huma.Post(api, "/room-types", h.Catalog.HandleCreateRoomType, staff("Rooms"))
	huma.Put(api, "/room-types/{id}", h.Catalog.HandleUpdateRoomType, staff("Rooms"))
	huma.Delete(api, "/room-types/{id}", h.Catalog.HandleDeleteRoomType, staff("Rooms"))
	huma.Get(api, "/rooms", h.Catalog.HandleListRooms, staff("Rooms"))
	huma.Post(api, "/rooms", h.Catalog.HandleCreateRoom, staff("Rooms"))
	huma.Put(api, "/rooms/{id}", h.Catalog.HandleUpdateRoom, staff("Rooms"))
	huma.Get(api, "/rooms/{id}/quote", h.Bookings.HandleQuote, staff("Rooms"))

	huma.Get(api, "/guests", h.Catalog.HandleListGuests, staff("Guests"))
	huma.Post(api, "/guests", h.Catalog.HandleCreateGuest, staff("Guests"))
	huma.Get(api, "/guests/{id}", h.Catalog.HandleGetGuest, staff("Guests"))
	huma.Put(api, "/guests/{id}", h.Catalog.HandleUpdateGuest, staff("Guests"))
	huma.Delete(api, "/guests/{id}", h.Catalog.HandleDeleteGuest, staff("Guests"))

	huma.Get(api, "/extras", h.Catalog.HandleListExtras, staff("Extras"))
	huma.Post(api, "/extras", h.Catalog.HandleCreateExtra, staff("Extras"))
	huma.Put(api, "/extras/{id}", h.Catalog.HandleUpdateExtra, staff("Extras"))
	huma.Delete(api, "/extras/{id}", h.Catalog.HandleDeleteExtra, staff("Extras"))

	return api
}
