package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-enrollment-api/internal/queue"
	"github.com/iliyamo/event-enrollment-api/internal/service"
)

// outcomeObserver records enroll/unenroll outcomes. metrics.Enrollment
// satisfies it.
type outcomeObserver interface {
	Observe(action, outcome string)
}

type nopObserver struct{}

func (nopObserver) Observe(string, string) {}

// EnrollmentHandler serves /api/event/:id/enrollment.
type EnrollmentHandler struct {
	Enrollments *service.EnrollmentService
	Publisher   queue.Publisher
	Metrics     outcomeObserver
	Log         zerolog.Logger
}

// NewEnrollmentHandler wires the handler. A nil publisher or observer
// disables that side effect.
func NewEnrollmentHandler(s *service.EnrollmentService, pub queue.Publisher, obs outcomeObserver, logger zerolog.Logger) *EnrollmentHandler {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &EnrollmentHandler{Enrollments: s, Publisher: pub, Metrics: obs, Log: logger}
}

// Enroll POST /api/event/:id/enrollment
func (h *EnrollmentHandler) Enroll(c echo.Context) error {
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

	en, err := h.Enrollments.Enroll(ctx, id, uid)
	if err != nil {
		h.Metrics.Observe("enroll", service.CodeOf(err))
		return writeError(c, h.Log, err)
	}
	h.Metrics.Observe("enroll", "ok")
	h.notify(queue.EnrollmentEvent{
		Action:    queue.ActionEnrolled,
		EventID:   id,
		EventName: en.EventName,
		UserID:    uid,
		At:        en.RegistrationDateTime,
	})
	return c.JSON(http.StatusCreated, en)
}

// Unenroll DELETE /api/event/:id/enrollment
func (h *EnrollmentHandler) Unenroll(c echo.Context) error {
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

	name, err := h.Enrollments.Unenroll(ctx, id, uid)
	if err != nil {
		h.Metrics.Observe("unenroll", service.CodeOf(err))
		return writeError(c, h.Log, err)
	}
	h.Metrics.Observe("unenroll", "ok")
	h.notify(queue.EnrollmentEvent{
		Action:    queue.ActionUnenrolled,
		EventID:   id,
		EventName: name,
		UserID:    uid,
		At:        time.Now().UTC(),
	})
	return c.NoContent(http.StatusOK)
}

// notify publishes after the transaction committed. It runs detached from
// the request so a slow broker never delays the response.
func (h *EnrollmentHandler) notify(ev queue.EnrollmentEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Publisher.PublishEnrollment(ctx, ev)
	}()
}
