package repository

import "context"

// LocationRepo reads the locations reference table.
type LocationRepo struct{ q querier }

// Exists reports whether a location with the given id exists.
func (r *LocationRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM locations WHERE id=?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
