package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

// EventService creates, updates and deletes events. Mutations are
// restricted to the event's creator.
type EventService struct {
	gw ports.Gateway
}

func NewEventService(gw ports.Gateway) *EventService {
	return &EventService{gw: gw}
}

func errEventNotFound() *Error {
	return notFound("event_not_found", "event not found")
}

// Create validates in and stores a new event created by creatorID.
func (s *EventService) Create(ctx context.Context, in model.EventInput, creatorID uint64) (uint64, error) {
	in = normalizeEvent(in)
	if err := validateEventFields(in); err != nil {
		return 0, err
	}
	var id uint64
	err := s.gw.WithTx(ctx, func(ctx context.Context, tx ports.Gateway) error {
		if err := checkVenueCapacity(ctx, tx, in); err != nil {
			return err
		}
		e := eventFromInput(in)
		e.CreatorUserID = creatorID
		newID, err := tx.Events().Insert(ctx, &e)
		if err != nil {
			return err
		}
		if err := tx.Events().ReplaceTags(ctx, newID, in.Tags); err != nil {
			return err
		}
		id = newID
		return nil
	})
	if err != nil {
		return 0, passThrough(err)
	}
	return id, nil
}

// Update replaces the fields of an event owned by callerID.
func (s *EventService) Update(ctx context.Context, id uint64, in model.EventInput, callerID uint64) error {
	in = normalizeEvent(in)
	err := s.gw.WithTx(ctx, func(ctx context.Context, tx ports.Gateway) error {
		if _, err := ownedEvent(ctx, tx, id, callerID); err != nil {
			return err
		}
		if err := validateEventFields(in); err != nil {
			return err
		}
		if err := checkVenueCapacity(ctx, tx, in); err != nil {
			return err
		}
		e := eventFromInput(in)
		e.ID = id
		e.CreatorUserID = callerID
		if err := tx.Events().Update(ctx, &e); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return errEventNotFound()
			}
			return err
		}
		return tx.Events().ReplaceTags(ctx, id, in.Tags)
	})
	return passThrough(err)
}

// Delete removes an event owned by callerID that has no enrollments.
func (s *EventService) Delete(ctx context.Context, id, callerID uint64) error {
	err := s.gw.WithTx(ctx, func(ctx context.Context, tx ports.Gateway) error {
		if _, err := ownedEvent(ctx, tx, id, callerID); err != nil {
			return err
		}
		n, err := tx.Enrollments().Count(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("event_has_enrollments", "event has enrollments and cannot be deleted")
		}
		if err := tx.Events().Delete(ctx, id); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return errEventNotFound()
			}
			return err
		}
		return nil
	})
	return passThrough(err)
}

func ownedEvent(ctx context.Context, gw ports.Gateway, id, callerID uint64) (*model.Event, error) {
	e, err := gw.Events().FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, errEventNotFound()
		}
		return nil, internalError(err)
	}
	if e.CreatorUserID != callerID {
		return nil, errEventNotFound()
	}
	return e, nil
}

func validateEventFields(in model.EventInput) error {
	if utf8.RuneCountInString(in.Name) < 3 {
		return validationError("invalid_name", "name must be at least 3 characters long")
	}
	if utf8.RuneCountInString(in.Description) < 3 {
		return validationError("invalid_description", "description must be at least 3 characters long")
	}
	if in.Price < 0 {
		return validationError("invalid_price", "price must not be negative")
	}
	if in.DurationInMinutes < 0 {
		return validationError("invalid_duration", "duration_in_minutes must not be negative")
	}
	return nil
}

// checkVenueCapacity runs the cross-entity rules: the venue must exist
// and hold at least max_assistance people. The venue row stays locked
// until the event write commits.
func checkVenueCapacity(ctx context.Context, gw ports.Gateway, in model.EventInput) error {
	v, err := gw.Venues().FindByIDForShare(ctx, in.VenueID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return validationError("event_location_not_found", "id_event_location does not reference an existing event location")
		}
		return internalError(err)
	}
	if in.MaxAssistance > v.MaxCapacity {
		return validationError("max_assistance_exceeds_capacity", "max_assistance exceeds the venue's max capacity")
	}
	return nil
}

func normalizeEvent(in model.EventInput) model.EventInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.StartDate = in.StartDate.UTC()
	in.Tags = normalizeTags(in.Tags)
	return in
}

// normalizeTags trims tags, drops empties and removes case-insensitive
// duplicates keeping the first spelling.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func eventFromInput(in model.EventInput) model.Event {
	return model.Event{
		Name:                 in.Name,
		Description:          in.Description,
		VenueID:              in.VenueID,
		StartDate:            in.StartDate,
		DurationInMinutes:    in.DurationInMinutes,
		Price:                in.Price,
		EnabledForEnrollment: in.EnabledForEnrollment,
		MaxAssistance:        in.MaxAssistance,
		Tags:                 in.Tags,
	}
}
