package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/event-enrollment-api/internal/model"
)

// eventWhere builds the WHERE clause shared by List and Count.
func eventWhere(f model.EventFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if f.Name != "" {
		where = append(where, `LOWER(e.name) LIKE ? ESCAPE '\\'`)
		args = append(args, containsPattern(f.Name))
	}
	if f.StartDate != nil {
		y, m, d := f.StartDate.UTC().Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		where = append(where, "e.start_date >= ? AND e.start_date < ?")
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	if f.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM event_tags et
			JOIN tags t ON t.id = et.id_tag
			WHERE et.id_event = e.id AND LOWER(t.name) LIKE ? ESCAPE '\\')`)
		args = append(args, containsPattern(f.Tag))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into a LIKE pattern matching it as a literal,
// lower-cased substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// Count returns how many events match f.
func (r *EventRepo) Count(ctx context.Context, f model.EventFilter) (int, error) {
	cond, args := eventWhere(f)
	var total int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM events e WHERE "+cond, args...).Scan(&total)
	return total, err
}

// List returns one page of events matching f ordered by start date,
// each joined with its creator and venue summaries.
func (r *EventRepo) List(ctx context.Context, f model.EventFilter, limit, offset int) ([]model.EventListItem, error) {
	cond, args := eventWhere(f)
	dataSQL := `SELECT
			e.id, e.name, e.description, e.start_date, e.duration_in_minutes,
			e.price, e.enabled_for_enrollment, e.max_assistance,
			u.id, u.first_name, u.last_name, u.username,
			el.id, el.name, el.full_address, el.max_capacity
		FROM events e
		JOIN users u            ON u.id = e.id_creator_user
		JOIN event_locations el ON el.id = e.id_event_location
		WHERE ` + cond + `
		ORDER BY e.start_date ASC, e.id ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)
	rows, err := r.q.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.EventListItem, 0, limit)
	ids := make([]uint64, 0, limit)
	for rows.Next() {
		var (
			it      model.EventListItem
			enabled int64
		)
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Description, &it.StartDate, &it.DurationInMinutes,
			&it.Price, &enabled, &it.MaxAssistance,
			&it.CreatorUser.ID, &it.CreatorUser.FirstName, &it.CreatorUser.LastName, &it.CreatorUser.Username,
			&it.EventLocation.ID, &it.EventLocation.Name, &it.EventLocation.FullAddress, &it.EventLocation.MaxCapacity,
		); err != nil {
			return nil, err
		}
		it.EnabledForEnrollment = enabled != 0
		out = append(out, it)
		ids = append(ids, it.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := r.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tags = tags[out[i].ID]
		if out[i].Tags == nil {
			out[i].Tags = []string{}
		}
	}
	return out, nil
}
