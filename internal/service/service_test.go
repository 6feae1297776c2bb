package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports/portstest"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	gw          *portstest.Gateway
	venues      *VenueService
	events      *EventService
	enrollments *EnrollmentService
	query       *EventQuery
	alice, bob  uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := portstest.New()
	ctx := context.Background()
	alice, err := gw.Users().Create(ctx, &model.User{FirstName: "Alice", LastName: "Smith", Username: "alice@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	bob, err := gw.Users().Create(ctx, &model.User{FirstName: "Bob", LastName: "Jones", Username: "bob@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	return &fixture{
		gw:          gw,
		venues:      NewVenueService(gw),
		events:      NewEventService(gw),
		enrollments: NewEnrollmentService(gw).WithClock(func() time.Time { return fixedNow }),
		query:       NewEventQuery(gw),
		alice:       alice,
		bob:         bob,
	}
}

func (f *fixture) venue(t *testing.T, owner uint64, capacity int) uint64 {
	t.Helper()
	id, err := f.venues.Create(context.Background(), model.VenueInput{
		Name:        "Main Hall",
		FullAddress: "123 Main Street",
		MaxCapacity: capacity,
	}, owner)
	require.NoError(t, err)
	return id
}

func (f *fixture) eventInput(venueID uint64, start time.Time, maxAssistance int) model.EventInput {
	return model.EventInput{
		Name:                 "Go Conference",
		Description:          "Talks about Go",
		VenueID:              venueID,
		StartDate:            start,
		DurationInMinutes:    90,
		Price:                10,
		EnabledForEnrollment: true,
		MaxAssistance:        maxAssistance,
	}
}

func (f *fixture) event(t *testing.T, owner uint64, start time.Time, maxAssistance int) uint64 {
	t.Helper()
	v := f.venue(t, owner, 100)
	id, err := f.events.Create(context.Background(), f.eventInput(v, start, maxAssistance), owner)
	require.NoError(t, err)
	return id
}

func requireKind(t *testing.T, err error, kind Kind, code string) {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "expected *service.Error, got %T", err)
	require.Equal(t, kind, se.Kind)
	require.Equal(t, code, se.Code)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name         string
		number, size int
		want         Page
		offset       int
	}{
		{name: "defaults", number: 0, size: 0, want: Page{Number: 1, Size: 10}, offset: 0},
		{name: "second page", number: 2, size: 10, want: Page{Number: 2, Size: 10}, offset: 10},
		{name: "capped size", number: 3, size: 500, want: Page{Number: 3, Size: MaxPageSize}, offset: 200},
		{name: "negative", number: -4, size: -1, want: Page{Number: 1, Size: 10}, offset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.number, tt.size)
			require.Equal(t, tt.want, p)
			require.Equal(t, tt.offset, p.Offset())
		})
	}
}

func TestPaginateNextPage(t *testing.T) {
	p := paginate(NewPage(1, 10), 25)
	require.NotNil(t, p.NextPage)
	require.Equal(t, 2, *p.NextPage)

	p = paginate(NewPage(3, 10), 25)
	require.Nil(t, p.NextPage)
	require.Equal(t, 20, p.Offset)
	require.Equal(t, 25, p.Total)
}

func TestKindOfForeignError(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.Equal(t, "internal_error", CodeOf(errors.New("boom")))

	err := internalError(errors.New("db down"))
	require.ErrorContains(t, err, "db down")
	require.Equal(t, "internal server error", err.Message)
}
