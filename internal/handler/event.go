package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/service"
)

// EventHandler serves /api/event. Reads are public; writes need a user.
type EventHandler struct {
	Events *service.EventService
	Query  *service.EventQuery
	Log    zerolog.Logger
}

func NewEventHandler(e *service.EventService, q *service.EventQuery, logger zerolog.Logger) *EventHandler {
	return &EventHandler{Events: e, Query: q, Log: logger}
}

// flexBool accepts true/false, 1/0 and their quoted forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(string(bytes.Trim(data, `"`)))
	switch s {
	case "true", "1":
		*b = true
	case "false", "0", "null", "":
		*b = false
	default:
		return fmt.Errorf("invalid boolean %q", string(data))
	}
	return nil
}

// startDateLayouts are tried in order when parsing start_date.
var startDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

func parseStartDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range startDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type eventReq struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	VenueID              uint64   `json:"id_event_location"`
	StartDate            string   `json:"start_date"`
	DurationInMinutes    int      `json:"duration_in_minutes"`
	Price                float64  `json:"price"`
	EnabledForEnrollment flexBool `json:"enabled_for_enrollment"`
	MaxAssistance        int      `json:"max_assistance"`
	Tags                 []string `json:"tags"`
}

func (r eventReq) input() (model.EventInput, bool) {
	start, ok := parseStartDate(r.StartDate)
	if !ok {
		return model.EventInput{}, false
	}
	return model.EventInput{
		Name:                 r.Name,
		Description:          r.Description,
		VenueID:              r.VenueID,
		StartDate:            start,
		DurationInMinutes:    r.DurationInMinutes,
		Price:                r.Price,
		EnabledForEnrollment: bool(r.EnabledForEnrollment),
		MaxAssistance:        r.MaxAssistance,
		Tags:                 r.Tags,
	}, true
}

// bindEvent decodes the request body. Failures come back as validation
// errors ready for writeError.
func bindEvent(c echo.Context) (model.EventInput, error) {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return model.EventInput{}, &service.Error{Kind: service.KindValidation, Code: "invalid_body", Message: "request body is not valid JSON"}
	}
	in, ok := req.input()
	if !ok {
		return model.EventInput{}, &service.Error{Kind: service.KindValidation, Code: "invalid_start_date", Message: "start_date is required (RFC 3339 or YYYY-MM-DD)"}
	}
	return in, nil
}

// List GET /api/event?page&size&name&startdate&tag
func (h *EventHandler) List(c echo.Context) error {
	f, err := service.ParseFilter(service.ListParams{
		Name:      c.QueryParam("name"),
		StartDate: c.QueryParam("startdate"),
		Tag:       c.QueryParam("tag"),
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.Query.List(ctx, parsePage(c), f)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Detail GET /api/event/:id
func (h *EventHandler) Detail(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Query.Detail(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Create POST /api/event
func (h *EventHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	in, err := bindEvent(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Events.Create(ctx, in, uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update PUT /api/event/:id. The id comes from the path only.
func (h *EventHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	in, err := bindEvent(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Events.Update(ctx, id, in, uid); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusOK)
}

// Delete DELETE /api/event/:id
func (h *EventHandler) Delete(c echo.Context) error {
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

	if err := h.Events.Delete(ctx, id, uid); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusOK)
}
