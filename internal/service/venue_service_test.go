package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-enrollment-api/internal/model"
)

func TestVenueCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.venues.Create(ctx, model.VenueInput{Name: "  Arena  ", FullAddress: "1 Stadium Rd", MaxCapacity: 50}, f.alice)
	require.NoError(t, err)

	v, err := f.venues.Get(ctx, id, f.alice)
	require.NoError(t, err)
	require.Equal(t, "Arena", v.Name)
	require.Equal(t, "1 Stadium Rd", v.FullAddress)
	require.Equal(t, 50, v.MaxCapacity)
	require.Equal(t, f.alice, v.CreatorUserID)
}

func TestVenueValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   model.VenueInput
		code string
	}{
		{name: "all invalid reports name", in: model.VenueInput{Name: "ab", FullAddress: "x", MaxCapacity: 0}, code: "invalid_name"},
		{name: "short address", in: model.VenueInput{Name: "Arena", FullAddress: "1 St", MaxCapacity: 0}, code: "invalid_full_address"},
		{name: "zero capacity", in: model.VenueInput{Name: "Arena", FullAddress: "1 Stadium Rd", MaxCapacity: 0}, code: "invalid_max_capacity"},
		{name: "negative capacity", in: model.VenueInput{Name: "Arena", FullAddress: "1 Stadium Rd", MaxCapacity: -3}, code: "invalid_max_capacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.gw.Writes()
			_, err := f.venues.Create(ctx, tt.in, f.alice)
			requireKind(t, err, KindValidation, tt.code)
			require.Equal(t, before, f.gw.Writes())
		})
	}
}

func TestVenueUnknownLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := uint64(999)

	_, err := f.venues.Create(ctx, model.VenueInput{Name: "Arena", FullAddress: "1 Stadium Rd", MaxCapacity: 5, LocationID: &missing}, f.alice)
	requireKind(t, err, KindValidation, "location_not_found")

	prov := f.gw.AddProvince(model.Province{Name: "Buenos Aires", FullName: "Provincia de Buenos Aires"})
	loc := f.gw.AddLocation(model.Location{Name: "La Plata", ProvinceID: prov})
	_, err = f.venues.Create(ctx, model.VenueInput{Name: "Arena", FullAddress: "1 Stadium Rd", MaxCapacity: 5, LocationID: &loc}, f.alice)
	require.NoError(t, err)
}

func TestVenueOwnershipIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.venue(t, f.alice, 10)
	in := model.VenueInput{Name: "Stolen", FullAddress: "Somewhere 1", MaxCapacity: 3}

	_, err := f.venues.Get(ctx, id, f.bob)
	requireKind(t, err, KindNotFound, "venue_not_found")

	err = f.venues.Update(ctx, id, in, f.bob)
	requireKind(t, err, KindNotFound, "venue_not_found")

	err = f.venues.Delete(ctx, id, f.bob)
	requireKind(t, err, KindNotFound, "venue_not_found")

	v, err := f.venues.Get(ctx, id, f.alice)
	require.NoError(t, err)
	require.Equal(t, "Main Hall", v.Name)
}

func TestVenueUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.venue(t, f.alice, 10)

	err := f.venues.Update(ctx, id, model.VenueInput{Name: "Renamed", FullAddress: "456 Side Street", MaxCapacity: 20}, f.alice)
	require.NoError(t, err)

	v, err := f.venues.Get(ctx, id, f.alice)
	require.NoError(t, err)
	require.Equal(t, "Renamed", v.Name)
	require.Equal(t, 20, v.MaxCapacity)
	require.Equal(t, f.alice, v.CreatorUserID)
}

func TestVenueDeleteBlockedByEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	venueID := f.venue(t, f.alice, 10)
	eventID, err := f.events.Create(ctx, f.eventInput(venueID, fixedNow.AddDate(0, 0, 7), 5), f.alice)
	require.NoError(t, err)

	err = f.venues.Delete(ctx, venueID, f.alice)
	requireKind(t, err, KindConflict, "venue_in_use")

	require.NoError(t, f.events.Delete(ctx, eventID, f.alice))
	require.NoError(t, f.venues.Delete(ctx, venueID, f.alice))

	_, err = f.venues.Get(ctx, venueID, f.alice)
	requireKind(t, err, KindNotFound, "venue_not_found")
}

func TestVenueListIsOwnerScopedAndPaged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		f.venue(t, f.alice, 10)
	}
	f.venue(t, f.bob, 10)

	page, err := f.venues.List(ctx, f.alice, NewPage(2, 5))
	require.NoError(t, err)
	require.Len(t, page.Collection, 5)
	require.Equal(t, 12, page.Pagination.Total)
	require.Equal(t, 5, page.Pagination.Offset)
	for i := 1; i < len(page.Collection); i++ {
		require.Less(t, page.Collection[i-1].ID, page.Collection[i].ID)
	}
	for _, v := range page.Collection {
		require.Equal(t, f.alice, v.CreatorUserID)
	}

	empty, err := f.venues.List(ctx, f.bob, NewPage(3, 10))
	require.NoError(t, err)
	require.NotNil(t, empty.Collection)
	require.Empty(t, empty.Collection)
}
