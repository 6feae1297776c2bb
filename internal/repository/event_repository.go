package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/event-enrollment-api/internal/model"
)

// EventRepo manages persistence for events and their tag links.
type EventRepo struct{ q querier }

const eventColumns = `id, name, description, id_event_location, start_date, duration_in_minutes,
	price, enabled_for_enrollment, max_assistance, id_creator_user`

// enabledFlag coerces the native bool to the TINYINT(1) column.
func enabledFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *EventRepo) findOne(ctx context.Context, query string, id uint64) (*model.Event, error) {
	var (
		e       model.Event
		enabled int64
	)
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.VenueID, &e.StartDate, &e.DurationInMinutes,
		&e.Price, &enabled, &e.MaxAssistance, &e.CreatorUserID)
	if err != nil {
		return nil, mapErr(err)
	}
	e.EnabledForEnrollment = enabled != 0
	tags, err := r.tagsOf(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	e.Tags = tags
	return &e, nil
}

// FindByID returns an event with its tags.
func (r *EventRepo) FindByID(ctx context.Context, id uint64) (*model.Event, error) {
	return r.findOne(ctx, "SELECT "+eventColumns+" FROM events WHERE id=? LIMIT 1", id)
}

// FindByIDForUpdate locks the event row for the rest of the
// transaction. Outside a transaction the lock is released immediately.
func (r *EventRepo) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Event, error) {
	return r.findOne(ctx, "SELECT "+eventColumns+" FROM events WHERE id=? FOR UPDATE", id)
}

// FindDetail loads an event joined with its venue, the venue's
// location and province, and the creator.
func (r *EventRepo) FindDetail(ctx context.Context, id uint64) (*model.EventDetail, error) {
	const q = `SELECT
			e.id, e.name, e.description, e.start_date, e.duration_in_minutes,
			e.price, e.enabled_for_enrollment, e.max_assistance,
			el.id, el.name, el.full_address, el.max_capacity, el.latitude, el.longitude,
			l.id, l.name, l.latitude, l.longitude,
			p.id, p.name, p.full_name, p.latitude, p.longitude, p.display_order,
			u.id, u.first_name, u.last_name, u.username
		FROM events e
		JOIN event_locations el ON el.id = e.id_event_location
		JOIN users u            ON u.id = e.id_creator_user
		LEFT JOIN locations l   ON l.id = el.id_location
		LEFT JOIN provinces p   ON p.id = l.id_province
		WHERE e.id = ?
		LIMIT 1`

	var (
		d                  model.EventDetail
		enabled            int64
		elLat, elLng       sql.NullFloat64
		locID              sql.NullInt64
		locName            sql.NullString
		locLat, locLng     sql.NullFloat64
		provID             sql.NullInt64
		provName, provFull sql.NullString
		provLat, provLng   sql.NullFloat64
		provOrder          sql.NullInt64
	)
	err := r.q.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Name, &d.Description, &d.StartDate, &d.DurationInMinutes,
		&d.Price, &enabled, &d.MaxAssistance,
		&d.EventLocation.ID, &d.EventLocation.Name, &d.EventLocation.FullAddress, &d.EventLocation.MaxCapacity, &elLat, &elLng,
		&locID, &locName, &locLat, &locLng,
		&provID, &provName, &provFull, &provLat, &provLng, &provOrder,
		&d.CreatorUser.ID, &d.CreatorUser.FirstName, &d.CreatorUser.LastName, &d.CreatorUser.Username,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	d.EnabledForEnrollment = enabled != 0
	d.EventLocation.Latitude = nullFloat(elLat)
	d.EventLocation.Longitude = nullFloat(elLng)
	if locID.Valid {
		d.EventLocation.Location = &model.LocationDetail{
			ID:        uint64(locID.Int64),
			Name:      locName.String,
			Latitude:  nullFloat(locLat),
			Longitude: nullFloat(locLng),
		}
		if provID.Valid {
			d.EventLocation.Location.Province = model.Province{
				ID:           uint64(provID.Int64),
				Name:         provName.String,
				FullName:     provFull.String,
				Latitude:     nullFloat(provLat),
				Longitude:    nullFloat(provLng),
				DisplayOrder: nullInt(provOrder),
			}
		}
	}
	tags, err := r.tagsOf(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Tags = tags
	return &d, nil
}

// Insert stores a new event and returns its id. Tags are written
// separately through ReplaceTags.
func (r *EventRepo) Insert(ctx context.Context, e *model.Event) (uint64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO events (name, description, id_event_location, start_date, duration_in_minutes,
		                     price, enabled_for_enrollment, max_assistance, id_creator_user)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		e.Name, e.Description, e.VenueID, e.StartDate, e.DurationInMinutes,
		e.Price, enabledFlag(e.EnabledForEnrollment), e.MaxAssistance, e.CreatorUserID)
	if err != nil {
		return 0, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the mutable columns of an event created by
// e.CreatorUserID.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE events
		    SET name=?, description=?, id_event_location=?, start_date=?, duration_in_minutes=?,
		        price=?, enabled_for_enrollment=?, max_assistance=?
		  WHERE id=? AND id_creator_user=?`,
		e.Name, e.Description, e.VenueID, e.StartDate, e.DurationInMinutes,
		e.Price, enabledFlag(e.EnabledForEnrollment), e.MaxAssistance, e.ID, e.CreatorUserID)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// Delete removes an event and its tag links. Callers run it inside a
// transaction.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM event_tags WHERE id_event=?", id); err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

// ReplaceTags makes tags the exact tag set of the event, creating
// missing tags on the fly.
func (r *EventRepo) ReplaceTags(ctx context.Context, eventID uint64, tags []string) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM event_tags WHERE id_event=?", eventID); err != nil {
		return err
	}
	for _, name := range tags {
		// LAST_INSERT_ID(id) makes an existing tag report its id as the insert id.
		res, err := r.q.ExecContext(ctx,
			"INSERT INTO tags (name) VALUES (?) ON DUPLICATE KEY UPDATE id=LAST_INSERT_ID(id)", name)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		tagID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		// Names that differ only in accents share one tag row under the
		// column collation, so the link may already exist.
		if _, err := r.q.ExecContext(ctx,
			"INSERT INTO event_tags (id_event, id_tag) VALUES (?,?) ON DUPLICATE KEY UPDATE id_tag=id_tag", eventID, tagID); err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (r *EventRepo) tagsOf(ctx context.Context, eventID uint64) ([]string, error) {
	byEvent, err := r.tagsFor(ctx, []uint64{eventID})
	if err != nil {
		return nil, err
	}
	if tags := byEvent[eventID]; tags != nil {
		return tags, nil
	}
	return []string{}, nil
}

// tagsFor loads the tag names of several events in one round trip.
func (r *EventRepo) tagsFor(ctx context.Context, eventIDs []uint64) (map[uint64][]string, error) {
	out := make(map[uint64][]string, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(eventIDs)), ",")
	rows, err := r.q.QueryContext(ctx,
		`SELECT et.id_event, t.name
		   FROM event_tags et
		   JOIN tags t ON t.id = et.id_tag
		  WHERE et.id_event IN (`+placeholders+`)
		  ORDER BY et.id_event, t.name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   uint64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}
