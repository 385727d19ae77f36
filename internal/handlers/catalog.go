package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/auth"
	"github.com/gdg-garage/hotel-pms/internal/booking"
	"github.com/gdg-garage/hotel-pms/internal/logging"
	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/gdg-garage/hotel-pms/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CatalogHandler serves the reference data bookings point at: room types,
// rooms, guests and the extras catalog.
type CatalogHandler struct {
	db  *gorm.DB
	log *logrus.Logger
	now func() time.Time
}

func NewCatalogHandler(db *gorm.DB, log *logrus.Logger) *CatalogHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &CatalogHandler{db: db, log: log, now: time.Now}
}

type IDInput struct {
	ID uint `path:"id"`
}

type ListInput struct {
	IncludeDeleted bool `query:"includeDeleted" doc:"Include soft-deleted rows"`
}

func notFound(resource string, id uint, err error) error {
	if store.IsNotFound(err) {
		return &booking.NotFoundError{Resource: resource, ID: id}
	}
	return err
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &booking.ValidationError{Code: booking.CodeMissingField, Field: field, Message: field + " is required"}
	}
	return nil
}

func nonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return &booking.ValidationError{Code: booking.CodeInvalidPrice, Field: field, Message: field + " must not be negative"}
	}
	return nil
}

// Room types

type RoomTypeBody struct {
	Name        string          `json:"name" doc:"Room type name"`
	Description string          `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"base_price" doc:"Nightly base price"`
}

func (b RoomTypeBody) validate() error {
	if err := required("name", b.Name); err != nil {
		return err
	}
	return nonNegative("base_price", b.BasePrice)
}

type RoomTypeRequest struct {
	Body RoomTypeBody
}

type UpdateRoomTypeRequest struct {
	ID   uint `path:"id"`
	Body RoomTypeBody
}

type RoomTypeResponse struct {
	Body models.RoomType
}

type RoomTypeListResponse struct {
	Body []models.RoomType
}

func (h *CatalogHandler) HandleListRoomTypes(ctx context.Context, input *ListInput) (*RoomTypeListResponse, error) {
	rows, err := store.List[models.RoomType](h.db.WithContext(ctx), store.VisibilityOf(input.IncludeDeleted))
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &RoomTypeListResponse{Body: rows}, nil
}

func (h *CatalogHandler) HandleCreateRoomType(ctx context.Context, input *RoomTypeRequest) (*RoomTypeResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := input.Body.validate(); err != nil {
		return nil, httpError(h.log, err)
	}
	rt := models.RoomType{
		Name:        strings.TrimSpace(input.Body.Name),
		Description: input.Body.Description,
		BasePrice:   input.Body.BasePrice,
	}
	if err := h.db.WithContext(ctx).Create(&rt).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	return &RoomTypeResponse{Body: rt}, nil
}

func (h *CatalogHandler) HandleUpdateRoomType(ctx context.Context, input *UpdateRoomTypeRequest) (*RoomTypeResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := input.Body.validate(); err != nil {
		return nil, httpError(h.log, err)
	}
	rt, err := store.First[models.RoomType](h.db.WithContext(ctx), input.ID, store.Active)
	if err != nil {
		return nil, httpError(h.log, notFound("room type", input.ID, err))
	}
	err = h.db.WithContext(ctx).Model(rt).Updates(map[string]any{
		"name":        strings.TrimSpace(input.Body.Name),
		"description": input.Body.Description,
		"base_price":  input.Body.BasePrice,
	}).Error
	if err != nil {
		return nil, httpError(h.log, err)
	}
	rt, err = store.First[models.RoomType](h.db.WithContext(ctx), input.ID, store.All)
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &RoomTypeResponse{Body: *rt}, nil
}

func (h *CatalogHandler) HandleDeleteRoomType(ctx context.Context, input *IDInput) (*SuccessResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := store.SoftDelete[models.RoomType](h.db.WithContext(ctx), input.ID, h.now()); err != nil {
		return nil, httpError(h.log, notFound("room type", input.ID, err))
	}
	return success(), nil
}

// Rooms

type RoomBody struct {
	RoomNumber  string `json:"room_number" doc:"Unique room number"`
	RoomTypeID  uint   `json:"room_type_id" doc:"Room type"`
	IsAvailable *bool  `json:"is_available,omitempty" doc:"Whether the room can be sold, defaults to true"`
}

type RoomRequest struct {
	Body RoomBody
}

type UpdateRoomRequest struct {
	ID   uint `path:"id"`
	Body RoomBody
}

type RoomResponse struct {
	Body models.Room
}

type RoomListResponse struct {
	Body []models.Room
}

func (h *CatalogHandler) HandleListRooms(ctx context.Context, _ *struct{}) (*RoomListResponse, error) {
	var rooms []models.Room
	if err := h.db.WithContext(ctx).Preload("RoomType", store.All.Scope()).Order("room_number").Find(&rooms).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	return &RoomListResponse{Body: rooms}, nil
}

func (h *CatalogHandler) HandleCreateRoom(ctx context.Context, input *RoomRequest) (*RoomResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	room := models.Room{IsAvailable: true}
	if err := h.saveRoom(ctx, &room, input.Body); err != nil {
		return nil, httpError(h.log, err)
	}
	return &RoomResponse{Body: room}, nil
}

func (h *CatalogHandler) HandleUpdateRoom(ctx context.Context, input *UpdateRoomRequest) (*RoomResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	var room models.Room
	if err := h.db.WithContext(ctx).First(&room, input.ID).Error; err != nil {
		return nil, httpError(h.log, notFound("room", input.ID, err))
	}
	if err := h.saveRoom(ctx, &room, input.Body); err != nil {
		return nil, httpError(h.log, err)
	}
	return &RoomResponse{Body: room}, nil
}

// saveRoom applies body to room and writes it. Room numbers are unique and
// the room type must be active.
func (h *CatalogHandler) saveRoom(ctx context.Context, room *models.Room, body RoomBody) error {
	number := strings.TrimSpace(body.RoomNumber)
	if err := required("room_number", number); err != nil {
		return err
	}
	if body.RoomTypeID == 0 {
		return &booking.ValidationError{Code: booking.CodeMissingField, Field: "room_type_id", Message: "room_type_id is required"}
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rt, err := store.First[models.RoomType](tx, body.RoomTypeID, store.Active)
		if err != nil {
			return notFound("room type", body.RoomTypeID, err)
		}

		var taken int64
		if err := tx.Model(&models.Room{}).Where("room_number = ? AND id <> ?", number, room.ID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return &booking.ValidationError{Code: booking.CodeInvalidInput, Field: "room_number", Message: "room number " + number + " already exists"}
		}

		room.RoomNumber = number
		room.RoomTypeID = rt.ID
		if body.IsAvailable != nil {
			room.IsAvailable = *body.IsAvailable
		}
		if err := tx.Omit("RoomType").Save(room).Error; err != nil {
			return err
		}
		room.RoomType = *rt
		return nil
	})
}

// Guests

type GuestBody struct {
	Name  string `json:"name" doc:"Guest name"`
	Email string `json:"email,omitempty" format:"email"`
	Phone string `json:"phone,omitempty"`
}

func (b GuestBody) validate() error {
	return required("name", b.Name)
}

type GuestRequest struct {
	Body GuestBody
}

type UpdateGuestRequest struct {
	ID   uint `path:"id"`
	Body GuestBody
}

type GuestResponse struct {
	Body models.Guest
}

type GuestListResponse struct {
	Body []models.Guest
}

func (h *CatalogHandler) HandleListGuests(ctx context.Context, input *ListInput) (*GuestListResponse, error) {
	rows, err := store.List[models.Guest](h.db.WithContext(ctx), store.VisibilityOf(input.IncludeDeleted))
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &GuestListResponse{Body: rows}, nil
}

func (h *CatalogHandler) HandleGetGuest(ctx context.Context, input *IDInput) (*GuestResponse, error) {
	g, err := store.First[models.Guest](h.db.WithContext(ctx), input.ID, store.All)
	if err != nil {
		return nil, httpError(h.log, notFound("guest", input.ID, err))
	}
	return &GuestResponse{Body: *g}, nil
}

func (h *CatalogHandler) HandleCreateGuest(ctx context.Context, input *GuestRequest) (*GuestResponse, error) {
	if err := input.Body.validate(); err != nil {
		return nil, httpError(h.log, err)
	}
	g := models.Guest{
		Name:  strings.TrimSpace(input.Body.Name),
		Email: strings.TrimSpace(input.Body.Email),
		Phone: strings.TrimSpace(input.Body.Phone),
	}
	if err := h.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	h.log.WithField("guest_id", g.ID).Info("guest created")
	return &GuestResponse{Body: g}, nil
}

func (h *CatalogHandler) HandleUpdateGuest(ctx context.Context, input *UpdateGuestRequest) (*GuestResponse, error) {
	if err := input.Body.validate(); err != nil {
		return nil, httpError(h.log, err)
	}
	g, err := store.First[models.Guest](h.db.WithContext(ctx), input.ID, store.Active)
	if err != nil {
		return nil, httpError(h.log, notFound("guest", input.ID, err))
	}
	g.Name = strings.TrimSpace(input.Body.Name)
	g.Email = strings.TrimSpace(input.Body.Email)
	g.Phone = strings.TrimSpace(input.Body.Phone)
	if err := h.db.WithContext(ctx).Save(g).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	return &GuestResponse{Body: *g}, nil
}

func (h *CatalogHandler) HandleDeleteGuest(ctx context.Context, input *IDInput) (*SuccessResponse, error) {
	if err := store.SoftDelete[models.Guest](h.db.WithContext(ctx), input.ID, h.now()); err != nil {
		return nil, httpError(h.log, notFound("guest", input.ID, err))
	}
	return success(), nil
}

// Extras catalog

type ExtraBody struct {
	Name           string          `json:"name" doc:"Extra name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price" doc:"Unit price"`
	IsPackage      bool            `json:"is_package,omitempty" doc:"Multi-night package product"`
	IncludedNights int             `json:"included_nights,omitempty" doc:"Nights included in a package"`
}

func (b ExtraBody) validate() error {
	if err := required("name", b.Name); err != nil {
		return err
	}
	if err := nonNegative("price", b.Price); err != nil {
		return err
	}
	if b.IncludedNights < 0 {
		return &booking.ValidationError{Code: booking.CodeInvalidInput, Field: "included_nights", Message: "included_nights must not be negative"}
	}
	return nil
}

func (b ExtraBody) columns() map[string]any {
	return map[string]any{
		"name":            strings.TrimSpace(b.Name),
		"description":     b.Description,
		"price":           b.Price,
		"is_package":      b.IsPackage,
		"included_nights": b.IncludedNights,
	}
}

type ExtraRequest struct {
	Body ExtraBody
}

type UpdateExtraRequest struct {
	ID   uint `path:"id"`
	Body ExtraBody
}

type ExtraResponse struct {
	Body models.Extra
}

type ExtraListResponse struct {
	Body []models.Extra
}

func (h *CatalogHandler) HandleListExtras(ctx context.Context, input *ListInput) (*ExtraListResponse, error) {
	rows, err := store.List[models.Extra](h.db.WithContext(ctx), store.VisibilityOf(input.IncludeDeleted))
	if err != nil {
		return nil, httpError(h.log, err)
	}
	return &ExtraListResponse{Body: rows}, nil
}

func (h *CatalogHandler) HandleCreateExtra(ctx context.Context, input *ExtraRequest) (*ExtraResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := input.Body.validate(); err != nil {
		return nil, httpError(h.log, err)
	}
	extra := models.Extra{
		Name:           strings.TrimSpace(input.Body.Name),
		Description:    input.Body.Description,
		Price:          input.Body.Price,
		IsPackage:      input.Body.IsPackage,
		IncludedNights: input.Body.IncludedNights,
	}
	if err := h.db.WithContext(ctx).Create(&extra).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	return &ExtraResponse{Body: extra}, nil
}

func (h *CatalogHandler) HandleUpdateExtra(ctx context.Context, input *UpdateExtraRequest) (*ExtraResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := input.Body.validate(); err != nil {
		return nil, httpError(h.log, err)
	}
	extra, err := store.First[models.Extra](h.db.WithContext(ctx), input.ID, store.Active)
	if err != nil {
		return nil, httpError(h.log, notFound("extra", input.ID, err))
	}
	if err := h.db.WithContext(ctx).Model(extra).Updates(input.Body.columns()).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	if extra, err = store.First[models.Extra](h.db.WithContext(ctx), input.ID, store.All); err != nil {
		return nil, httpError(h.log, err)
	}
	return &ExtraResponse{Body: *extra}, nil
}

func (h *CatalogHandler) HandleDeleteExtra(ctx context.Context, input *IDInput) (*SuccessResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := store.SoftDelete[models.Extra](h.db.WithContext(ctx), input.ID, h.now()); err != nil {
		return nil, httpError(h.log, notFound("extra", input.ID, err))
	}
	return success(), nil
}

// Staff profiles

type ProfileRequest struct {
	Body struct {
		Name  string      `json:"name,omitempty"`
		Email string      `json:"email" format:"email" doc:"Sign-in email of the staff member"`
		Role  models.Role `json:"role" enum:"admin,assistant"`
	}
}

type ProfileResponse struct {
	Body models.Profile
}

type ProfileListResponse struct {
	Body []models.Profile
}

func (h *CatalogHandler) HandleListProfiles(ctx context.Context, _ *struct{}) (*ProfileListResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	var profiles []models.Profile
	if err := h.db.WithContext(ctx).Order("id").Find(&profiles).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	return &ProfileListResponse{Body: profiles}, nil
}

func (h *CatalogHandler) HandleCreateProfile(ctx context.Context, input *ProfileRequest) (*ProfileResponse, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Body.Email))

	profile := models.Profile{Name: strings.TrimSpace(input.Body.Name), Email: email, Role: input.Body.Role}
	err := h.db.WithContext(ctx).Where("email = ?", email).First(&models.Profile{}).Error
	if err == nil {
		return nil, httpError(h.log, &booking.ValidationError{Code: booking.CodeInvalidInput, Field: "email", Message: "a profile for " + email + " already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httpError(h.log, err)
	}
	if err := h.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, httpError(h.log, err)
	}
	h.log.WithFields(logrus.Fields{"profile_id": profile.ID, "role": profile.Role}).Info("staff profile created")
	return &ProfileResponse{Body: profile}, nil
}
