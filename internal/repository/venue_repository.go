package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-enrollment-api/internal/model"
)

// VenueRepo manages persistence for venues, stored in event_locations.
type VenueRepo struct{ q querier }

const venueColumns = `id, id_location, name, full_address, max_capacity, latitude, longitude, id_creator_user`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (model.Venue, error) {
	var (
		v        model.Venue
		location sql.NullInt64
		lat, lng sql.NullFloat64
	)
	err := row.Scan(&v.ID, &location, &v.Name, &v.FullAddress, &v.MaxCapacity, &lat, &lng, &v.CreatorUserID)
	if err != nil {
		return model.Venue{}, err
	}
	v.LocationID = nullUint64(location)
	v.Latitude = nullFloat(lat)
	v.Longitude = nullFloat(lng)
	return v, nil
}

// FindByID returns a venue or ports.ErrNotFound.
func (r *VenueRepo) FindByID(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := scanVenue(r.q.QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM event_locations WHERE id=? LIMIT 1", id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// FindByIDForShare reads a venue under a shared lock held until the
// transaction ends.
func (r *VenueRepo) FindByIDForShare(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := scanVenue(r.q.QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM event_locations WHERE id=? LOCK IN SHARE MODE", id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// Insert stores a new venue and returns its id.
func (r *VenueRepo) Insert(ctx context.Context, v *model.Venue) (uint64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO event_locations (id_location, name, full_address, max_capacity, latitude, longitude, id_creator_user)
		 VALUES (?,?,?,?,?,?,?)`,
		v.LocationID, v.Name, v.FullAddress, v.MaxCapacity, v.Latitude, v.Longitude, v.CreatorUserID)
	if err != nil {
		return 0, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the mutable columns of a venue owned by
// v.CreatorUserID.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE event_locations
		    SET id_location=?, name=?, full_address=?, max_capacity=?, latitude=?, longitude=?
		  WHERE id=? AND id_creator_user=?`,
		v.LocationID, v.Name, v.FullAddress, v.MaxCapacity, v.Latitude, v.Longitude, v.ID, v.CreatorUserID)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// Delete removes a venue by id.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM event_locations WHERE id=?", id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// ListByOwner returns the owner's venues ordered by id.
func (r *VenueRepo) ListByOwner(ctx context.Context, ownerID uint64, limit, offset int) ([]model.Venue, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+venueColumns+" FROM event_locations WHERE id_creator_user=? ORDER BY id ASC LIMIT ? OFFSET ?",
		ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Venue, 0, limit)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountByOwner counts the owner's venues.
func (r *VenueRepo) CountByOwner(ctx context.Context, ownerID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_locations WHERE id_creator_user=?", ownerID).Scan(&n)
	return n, err
}

// CountEvents counts events held at the venue.
func (r *VenueRepo) CountEvents(ctx context.Context, venueID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE id_event_location=?", venueID).Scan(&n)
	return n, err
}

func nullUint64(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
