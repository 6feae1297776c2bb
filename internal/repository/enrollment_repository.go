package repository

import (
	"context"

	"github.com/iliyamo/event-enrollment-api/internal/model"
)

// EnrollmentRepo persists rows of event_enrollments. The table's
// primary key (id_event, id_user) rejects double enrollment.
type EnrollmentRepo struct{ q querier }

// Count returns the number of enrollments of an event.
func (r *EnrollmentRepo) Count(ctx context.Context, eventID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_enrollments WHERE id_event=?", eventID).Scan(&n)
	return n, err
}

// Exists reports whether userID is enrolled in eventID.
func (r *EnrollmentRepo) Exists(ctx context.Context, eventID, userID uint64) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_enrollments WHERE id_event=? AND id_user=?", eventID, userID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Insert stores an enrollment; a duplicate pair yields ports.ErrDuplicate.
func (r *EnrollmentRepo) Insert(ctx context.Context, en *model.Enrollment) error {
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO event_enrollments (id_event, id_user, registration_date_time) VALUES (?,?,?)",
		en.EventID, en.UserID, en.RegistrationDateTime)
	return mapErr(err)
}

// Delete hard deletes an enrollment.
func (r *EnrollmentRepo) Delete(ctx context.Context, eventID, userID uint64) error {
	res, err := r.q.ExecContext(ctx,
		"DELETE FROM event_enrollments WHERE id_event=? AND id_user=?", eventID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
