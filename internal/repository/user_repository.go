package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/event-enrollment-api/internal/model"
)

// UserRepo persists users. Usernames are stored trimmed and lower-cased.
type UserRepo struct{ q querier }

// Create inserts a user with an already hashed password and returns its
// id. A taken username yields ports.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	username := strings.ToLower(strings.TrimSpace(u.Username))
	res, err := r.q.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, username, password) VALUES (?,?,?,?)",
		u.FirstName, u.LastName, username, u.PasswordHash)
	if err != nil {
		return 0, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByUsername fetches a user by normalized username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.User
	err := r.q.QueryRowContext(ctx,
		"SELECT id, first_name, last_name, username, password FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.q.QueryRowContext(ctx,
		"SELECT id, first_name, last_name, username, password FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.PasswordHash)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}
