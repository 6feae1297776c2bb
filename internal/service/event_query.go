package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

// StartDateLayout is the accepted format of the startdate filter.
const StartDateLayout = time.DateOnly

// EventQuery serves the public read side of events.
type EventQuery struct {
	gw ports.Gateway
}

func NewEventQuery(gw ports.Gateway) *EventQuery {
	return &EventQuery{gw: gw}
}

// ListParams are the raw listing filters as received from a client.
type ListParams struct {
	Name      string
	StartDate string
	Tag       string
}

// ParseFilter turns raw parameters into an EventFilter, rejecting a
// malformed start date.
func ParseFilter(p ListParams) (model.EventFilter, error) {
	f := model.EventFilter{
		Name: strings.TrimSpace(p.Name),
		Tag:  strings.TrimSpace(p.Tag),
	}
	if sd := strings.TrimSpace(p.StartDate); sd != "" {
		d, err := time.ParseInLocation(StartDateLayout, sd, time.UTC)
		if err != nil {
			return model.EventFilter{}, validationError("invalid_startdate", "startdate must use the YYYY-MM-DD format")
		}
		f.StartDate = &d
	}
	return f, nil
}

// List returns one page of events matching f ordered by start date.
func (q *EventQuery) List(ctx context.Context, p Page, f model.EventFilter) (EventPage, error) {
	total, err := q.gw.Events().Count(ctx, f)
	if err != nil {
		return EventPage{}, internalError(err)
	}
	rows, err := q.gw.Events().List(ctx, f, p.Size, p.Offset())
	if err != nil {
		return EventPage{}, internalError(err)
	}
	if rows == nil {
		rows = []model.EventListItem{}
	}
	return EventPage{Collection: rows, Pagination: paginate(p, total)}, nil
}

// Detail returns the deep projection of one event.
func (q *EventQuery) Detail(ctx context.Context, id uint64) (*model.EventDetail, error) {
	d, err := q.gw.Events().FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, errEventNotFound()
		}
		return nil, internalError(err)
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d, nil
}
