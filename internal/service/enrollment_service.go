package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

// EnrollmentService toggles a user's enrollment in an event. The check
// and the write share one transaction that locks the event row, so
// concurrent enrollments cannot overbook an event.
type EnrollmentService struct {
	gw  ports.Gateway
	now func() time.Time
}

func NewEnrollmentService(gw ports.Gateway) *EnrollmentService {
	return &EnrollmentService{gw: gw, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *EnrollmentService) WithClock(now func() time.Time) *EnrollmentService {
	s.now = now
	return s
}

// Enroll registers userID for eventID. Guards run in a fixed order and
// the first failing one decides the error.
func (s *EnrollmentService) Enroll(ctx context.Context, eventID, userID uint64) (*model.Enrollment, error) {
	var out *model.Enrollment
	err := s.gw.WithTx(ctx, func(ctx context.Context, tx ports.Gateway) error {
		e, err := tx.Events().FindByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return errEventNotFound()
			}
			return err
		}
		n, err := tx.Enrollments().Count(ctx, eventID)
		if err != nil {
			return err
		}
		if n >= e.MaxAssistance {
			return validationError("capacity_exceeded", "event has reached its maximum assistance")
		}
		now := s.now().UTC()
		if !enrollmentOpen(now, e.StartDate) {
			return validationError("too_late", "enrollment closes the day before the event starts")
		}
		if !e.EnabledForEnrollment {
			return validationError("enrollment_disabled", "event is not enabled for enrollment")
		}
		exists, err := tx.Enrollments().Exists(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if exists {
			return errAlreadyEnrolled()
		}
		en := &model.Enrollment{EventID: eventID, UserID: userID, RegistrationDateTime: now, EventName: e.Name}
		if err := tx.Enrollments().Insert(ctx, en); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				return errAlreadyEnrolled()
			}
			return err
		}
		out = en
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return out, nil
}

// Unenroll removes userID's enrollment in eventID and returns the
// event's name.
func (s *EnrollmentService) Unenroll(ctx context.Context, eventID, userID uint64) (string, error) {
	var name string
	err := s.gw.WithTx(ctx, func(ctx context.Context, tx ports.Gateway) error {
		e, err := tx.Events().FindByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return errEventNotFound()
			}
			return err
		}
		exists, err := tx.Enrollments().Exists(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if !exists {
			return errNotEnrolled()
		}
		if err := tx.Enrollments().Delete(ctx, eventID, userID); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return errNotEnrolled()
			}
			return err
		}
		name = e.Name
		return nil
	})
	if err != nil {
		return "", passThrough(err)
	}
	return name, nil
}

func errAlreadyEnrolled() *Error {
	return conflict("already_enrolled", "user is already enrolled in this event")
}

func errNotEnrolled() *Error {
	return validationError("not_enrolled", "user is not enrolled in this event")
}

// enrollmentOpen reports whether start falls on a later UTC calendar
// day than now. Same-day and past events are closed.
func enrollmentOpen(now, start time.Time) bool {
	return startOfDay(start).After(startOfDay(now))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
