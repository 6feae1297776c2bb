package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

// VenueService manages venues on behalf of their owners. Every
// operation is scoped to the caller: a venue owned by someone else is
// indistinguishable from a missing one.
type VenueService struct {
	gw ports.Gateway
}

func NewVenueService(gw ports.Gateway) *VenueService {
	return &VenueService{gw: gw}
}

func errVenueNotFound() *Error {
	return notFound("venue_not_found", "event location not found")
}

// List returns one page of the owner's venues ordered by id.
func (s *VenueService) List(ctx context.Context, ownerID uint64, p Page) (VenuePage, error) {
	total, err := s.gw.Venues().CountByOwner(ctx, ownerID)
	if err != nil {
		return VenuePage{}, internalError(err)
	}
	rows, err := s.gw.Venues().ListByOwner(ctx, ownerID, p.Size, p.Offset())
	if err != nil {
		return VenuePage{}, internalError(err)
	}
	if rows == nil {
		rows = []model.Venue{}
	}
	return VenuePage{Collection: rows, Pagination: paginate(p, total)}, nil
}

// Get returns a venue owned by ownerID.
func (s *VenueService) Get(ctx context.Context, id, ownerID uint64) (*model.Venue, error) {
	return ownedVenue(ctx, s.gw, id, ownerID)
}

// Create validates in and stores a new venue owned by ownerID.
func (s *VenueService) Create(ctx context.Context, in model.VenueInput, ownerID uint64) (uint64, error) {
	in = normalizeVenue(in)
	if err := validateVenue(in); err != nil {
		return 0, err
	}
	if err := s.checkLocation(ctx, s.gw, in.LocationID); err != nil {
		return 0, err
	}
	v := venueFromInput(in)
	v.CreatorUserID = ownerID
	id, err := s.gw.Venues().Insert(ctx, &v)
	if err != nil {
		return 0, internalError(err)
	}
	return id, nil
}

// Update replaces the mutable fields of an owned venue.
func (s *VenueService) Update(ctx context.Context, id uint64, in model.VenueInput, ownerID uint64) error {
	in = normalizeVenue(in)
	if err := validateVenue(in); err != nil {
		return err
	}
	err := s.gw.WithTx(ctx, func(ctx context.Context, tx ports.Gateway) error {
		if _, err := ownedVenue(ctx, tx, id, ownerID); err != nil {
			return err
		}
		if err := s.checkLocation(ctx, tx, in.LocationID); err != nil {
			return err
		}
		v := venueFromInput(in)
		v.ID = id
		v.CreatorUserID = ownerID
		if err := tx.Venues().Update(ctx, &v); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return errVenueNotFound()
			}
			return err
		}
		return nil
	})
	return passThrough(err)
}

// Delete removes an owned venue that no event references.
func (s *VenueService) Delete(ctx context.Context, id, ownerID uint64) error {
	err := s.gw.WithTx(ctx, func(ctx context.Context, tx ports.Gateway) error {
		if _, err := ownedVenue(ctx, tx, id, ownerID); err != nil {
			return err
		}
		n, err := tx.Venues().CountEvents(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("venue_in_use", "event location is referenced by existing events and cannot be deleted")
		}
		if err := tx.Venues().Delete(ctx, id); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return errVenueNotFound()
			}
			return err
		}
		return nil
	})
	return passThrough(err)
}

func (s *VenueService) checkLocation(ctx context.Context, gw ports.Gateway, locationID *uint64) error {
	if locationID == nil {
		return nil
	}
	ok, err := gw.Locations().Exists(ctx, *locationID)
	if err != nil {
		return internalError(err)
	}
	if !ok {
		return validationError("location_not_found", "id_location does not reference an existing location")
	}
	return nil
}

func ownedVenue(ctx context.Context, gw ports.Gateway, id, ownerID uint64) (*model.Venue, error) {
	v, err := gw.Venues().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, errVenueNotFound()
		}
		return nil, internalError(err)
	}
	if v.CreatorUserID != ownerID {
		return nil, errVenueNotFound()
	}
	return v, nil
}

func normalizeVenue(in model.VenueInput) model.VenueInput {
	in.Name = strings.TrimSpace(in.Name)
	in.FullAddress = strings.TrimSpace(in.FullAddress)
	return in
}

func validateVenue(in model.VenueInput) error {
	if utf8.RuneCountInString(in.Name) < 3 {
		return validationError("invalid_name", "name must be at least 3 characters long")
	}
	if utf8.RuneCountInString(in.FullAddress) < 5 {
		return validationError("invalid_full_address", "full_address must be at least 5 characters long")
	}
	if in.MaxCapacity <= 0 {
		return validationError("invalid_max_capacity", "max_capacity must be a positive integer")
	}
	return nil
}

func venueFromInput(in model.VenueInput) model.Venue {
	return model.Venue{
		LocationID:  in.LocationID,
		Name:        in.Name,
		FullAddress: in.FullAddress,
		MaxCapacity: in.MaxCapacity,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
}
