// Package ports declares the persistence gateway the service layer
// talks to. The MySQL implementation lives in internal/repository and
// an in-memory one in internal/ports/portstest.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/event-enrollment-api/internal/model"
)

// ErrNotFound is returned when a row addressed by id (or by a unique
// key) does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate")

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenRepository persists refresh token hashes.
type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owning user of a live token, or
	// ErrNotFound when the token is unknown, revoked or expired.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// VenueRepository persists venues (event locations).
type VenueRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Venue, error)
	// FindByIDForShare is FindByID holding a shared row lock until the
	// surrounding transaction ends, so the venue cannot change under it.
	FindByIDForShare(ctx context.Context, id uint64) (*model.Venue, error)
	Insert(ctx context.Context, v *model.Venue) (uint64, error)
	Update(ctx context.Context, v *model.Venue) error
	Delete(ctx context.Context, id uint64) error
	ListByOwner(ctx context.Context, ownerID uint64, limit, offset int) ([]model.Venue, error)
	CountByOwner(ctx context.Context, ownerID uint64) (int, error)
	// CountEvents reports how many events reference the venue.
	CountEvents(ctx context.Context, venueID uint64) (int, error)
}

// LocationRepository reads location reference data.
type LocationRepository interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// EventRepository persists events and their tags.
type EventRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Event, error)
	// FindByIDForUpdate is FindByID holding a row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint64) (*model.Event, error)
	FindDetail(ctx context.Context, id uint64) (*model.EventDetail, error)
	Insert(ctx context.Context, e *model.Event) (uint64, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id uint64) error
	ReplaceTags(ctx context.Context, eventID uint64, tags []string) error
	List(ctx context.Context, f model.EventFilter, limit, offset int) ([]model.EventListItem, error)
	Count(ctx context.Context, f model.EventFilter) (int, error)
}

// EnrollmentRepository persists enrollments. Rows are hard deleted.
type EnrollmentRepository interface {
	Count(ctx context.Context, eventID uint64) (int, error)
	Exists(ctx context.Context, eventID, userID uint64) (bool, error)
	Insert(ctx context.Context, en *model.Enrollment) error
	Delete(ctx context.Context, eventID, userID uint64) error
}

// Gateway groups the repositories. WithTx runs fn against a gateway
// bound to a single transaction that is committed when fn returns nil
// and rolled back otherwise.
type Gateway interface {
	Users() UserRepository
	Tokens() TokenRepository
	Venues() VenueRepository
	Locations() LocationRepository
	Events() EventRepository
	Enrollments() EnrollmentRepository
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Gateway) error) error
}
