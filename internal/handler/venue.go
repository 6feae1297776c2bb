package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/service"
)

// VenueHandler serves /api/event-location. Every route is scoped to the
// authenticated user.
type VenueHandler struct {
	Venues *service.VenueService
	Log    zerolog.Logger
}

func NewVenueHandler(v *service.VenueService, logger zerolog.Logger) *VenueHandler {
	return &VenueHandler{Venues: v, Log: logger}
}

type venueReq struct {
	LocationID  *uint64  `json:"id_location"`
	Name        string   `json:"name"`
	FullAddress string   `json:"full_address"`
	MaxCapacity int      `json:"max_capacity"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (r venueReq) input() model.VenueInput {
	return model.VenueInput{
		LocationID:  r.LocationID,
		Name:        r.Name,
		FullAddress: r.FullAddress,
		MaxCapacity: r.MaxCapacity,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// List GET /api/event-location?page&size
func (h *VenueHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.Venues.List(ctx, uid, parsePage(c))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Get GET /api/event-location/:id
func (h *VenueHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Venues.Get(ctx, id, uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Create POST /api/event-location
func (h *VenueHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Venues.Create(ctx, req.input(), uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update PUT /api/event-location/:id
func (h *VenueHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Venues.Update(ctx, id, req.input(), uid); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusOK)
}

// Delete DELETE /api/event-location/:id
func (h *VenueHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Venues.Delete(ctx, id, uid); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusOK)
}
