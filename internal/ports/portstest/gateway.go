// Package portstest provides an in-memory ports.Gateway for tests.
package portstest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

type refreshRow struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type enrollmentKey struct{ eventID, userID uint64 }

type state struct {
	users       map[uint64]model.User
	tokens      map[string]refreshRow
	venues      map[uint64]model.Venue
	locations   map[uint64]model.Location
	provinces   map[uint64]model.Province
	events      map[uint64]model.Event
	enrollments map[enrollmentKey]model.Enrollment
	seq         uint64
}

func newState() *state {
	return &state{
		users:       map[uint64]model.User{},
		tokens:      map[string]refreshRow{},
		venues:      map[uint64]model.Venue{},
		locations:   map[uint64]model.Location{},
		provinces:   map[uint64]model.Province{},
		events:      map[uint64]model.Event{},
		enrollments: map[enrollmentKey]model.Enrollment{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.venues {
		c.venues[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.provinces {
		c.provinces[k] = v
	}
	for k, v := range s.events {
		v.Tags = append([]string(nil), v.Tags...)
		c.events[k] = v
	}
	for k, v := range s.enrollments {
		c.enrollments[k] = v
	}
	c.seq = s.seq
	return c
}

func (s *state) nextID() uint64 {
	s.seq++
	return s.seq
}

// Gateway is a mutex guarded in-memory implementation of ports.Gateway.
// Transactions are serialized and rolled back by restoring a snapshot.
type Gateway struct {
	txMu   *sync.Mutex
	mu     *sync.Mutex
	st     *state
	writes *atomic.Int64
	inTx   bool
}

var _ ports.Gateway = (*Gateway)(nil)

// New returns an empty gateway.
func New() *Gateway {
	return &Gateway{
		txMu:   &sync.Mutex{},
		mu:     &sync.Mutex{},
		st:     newState(),
		writes: &atomic.Int64{},
	}
}

// Writes reports how many mutating repository calls succeeded.
func (g *Gateway) Writes() int64 { return g.writes.Load() }

// AddProvince seeds a province and returns its id.
func (g *Gateway) AddProvince(p model.Province) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p.ID == 0 {
		p.ID = g.st.nextID()
	}
	g.st.provinces[p.ID] = p
	return p.ID
}

// AddLocation seeds a location and returns its id.
func (g *Gateway) AddLocation(l model.Location) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l.ID == 0 {
		l.ID = g.st.nextID()
	}
	g.st.locations[l.ID] = l
	return l.ID
}

func (g *Gateway) Users() ports.UserRepository             { return userRepo{g} }
func (g *Gateway) Tokens() ports.TokenRepository           { return tokenRepo{g} }
func (g *Gateway) Venues() ports.VenueRepository           { return venueRepo{g} }
func (g *Gateway) Locations() ports.LocationRepository     { return locationRepo{g} }
func (g *Gateway) Events() ports.EventRepository           { return eventRepo{g} }
func (g *Gateway) Enrollments() ports.EnrollmentRepository { return enrollmentRepo{g} }

// WithTx implements ports.Gateway.
func (g *Gateway) WithTx(ctx context.Context, fn func(ctx context.Context, tx ports.Gateway) error) error {
	if g.inTx {
		return fn(ctx, g)
	}
	g.txMu.Lock()
	defer g.txMu.Unlock()

	g.mu.Lock()
	snapshot := g.st.clone()
	writes := g.writes.Load()
	g.mu.Unlock()

	tx := &Gateway{txMu: g.txMu, mu: g.mu, st: g.st, writes: g.writes, inTx: true}
	if err := fn(ctx, tx); err != nil {
		g.mu.Lock()
		*g.st = *snapshot
		g.writes.Store(writes)
		g.mu.Unlock()
		return err
	}
	return nil
}

func (g *Gateway) wrote() { g.writes.Add(1) }

type userRepo struct{ g *Gateway }

func (r userRepo) Create(_ context.Context, u *model.User) (uint64, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	for _, existing := range r.g.st.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return 0, ports.ErrDuplicate
		}
	}
	row := *u
	row.ID = r.g.st.nextID()
	r.g.st.users[row.ID] = row
	r.g.wrote()
	return row.ID, nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	for _, u := range r.g.st.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r userRepo) FindByID(_ context.Context, id uint64) (*model.User, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	u, ok := r.g.st.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &u, nil
}

type tokenRepo struct{ g *Gateway }

func (r tokenRepo) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	r.g.st.tokens[tokenHash] = refreshRow{userID: userID, exp: exp}
	r.g.wrote()
	return nil
}

func (r tokenRepo) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	row, ok := r.g.st.tokens[tokenHash]
	if !ok || row.revoked || time.Now().UTC().After(row.exp) {
		return 0, ports.ErrNotFound
	}
	return row.userID, nil
}

func (r tokenRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	if row, ok := r.g.st.tokens[tokenHash]; ok && !row.revoked {
		row.revoked = true
		r.g.st.tokens[tokenHash] = row
		r.g.wrote()
	}
	return nil
}

func (r tokenRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	for k, row := range r.g.st.tokens {
		if row.userID == userID && !row.revoked {
			row.revoked = true
			r.g.st.tokens[k] = row
		}
	}
	r.g.wrote()
	return nil
}

type venueRepo struct{ g *Gateway }

func (r venueRepo) FindByID(_ context.Context, id uint64) (*model.Venue, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	v, ok := r.g.st.venues[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &v, nil
}

// FindByIDForShare needs no lock: transactions are already serialized.
func (r venueRepo) FindByIDForShare(ctx context.Context, id uint64) (*model.Venue, error) {
	return r.FindByID(ctx, id)
}

func (r venueRepo) Insert(_ context.Context, v *model.Venue) (uint64, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	row := *v
	row.ID = r.g.st.nextID()
	r.g.st.venues[row.ID] = row
	r.g.wrote()
	return row.ID, nil
}

func (r venueRepo) Update(_ context.Context, v *model.Venue) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	if _, ok := r.g.st.venues[v.ID]; !ok {
		return ports.ErrNotFound
	}
	r.g.st.venues[v.ID] = *v
	r.g.wrote()
	return nil
}

func (r venueRepo) Delete(_ context.Context, id uint64) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	if _, ok := r.g.st.venues[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.g.st.venues, id)
	r.g.wrote()
	return nil
}

func (r venueRepo) ListByOwner(_ context.Context, ownerID uint64, limit, offset int) ([]model.Venue, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	var out []model.Venue
	for _, v := range r.g.st.venues {
		if v.CreatorUserID == ownerID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, limit, offset), nil
}

func (r venueRepo) CountByOwner(_ context.Context, ownerID uint64) (int, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	n := 0
	for _, v := range r.g.st.venues {
		if v.CreatorUserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r venueRepo) CountEvents(_ context.Context, venueID uint64) (int, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	n := 0
	for _, e := range r.g.st.events {
		if e.VenueID == venueID {
			n++
		}
	}
	return n, nil
}

type locationRepo struct{ g *Gateway }

func (r locationRepo) Exists(_ context.Context, id uint64) (bool, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	_, ok := r.g.st.locations[id]
	return ok, nil
}

type eventRepo struct{ g *Gateway }

func (r eventRepo) FindByID(_ context.Context, id uint64) (*model.Event, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	e, ok := r.g.st.events[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	e.Tags = append([]string(nil), e.Tags...)
	return &e, nil
}

func (r eventRepo) FindByIDForUpdate(ctx context.Context, id uint64) (*model.Event, error) {
	return r.FindByID(ctx, id)
}

func (r eventRepo) FindDetail(_ context.Context, id uint64) (*model.EventDetail, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	e, ok := r.g.st.events[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	v := r.g.st.venues[e.VenueID]
	d := &model.EventDetail{
		ID:                   e.ID,
		Name:                 e.Name,
		Description:          e.Description,
		StartDate:            e.StartDate,
		DurationInMinutes:    e.DurationInMinutes,
		Price:                e.Price,
		EnabledForEnrollment: e.EnabledForEnrollment,
		MaxAssistance:        e.MaxAssistance,
		EventLocation: model.VenueDetail{
			ID:          v.ID,
			Name:        v.Name,
			FullAddress: v.FullAddress,
			MaxCapacity: v.MaxCapacity,
			Latitude:    v.Latitude,
			Longitude:   v.Longitude,
		},
		CreatorUser: r.g.st.users[e.CreatorUserID].Summary(),
		Tags:        sortedTags(e.Tags),
	}
	if v.LocationID != nil {
		if l, ok := r.g.st.locations[*v.LocationID]; ok {
			d.EventLocation.Location = &model.LocationDetail{
				ID:        l.ID,
				Name:      l.Name,
				Latitude:  l.Latitude,
				Longitude: l.Longitude,
				Province:  r.g.st.provinces[l.ProvinceID],
			}
		}
	}
	return d, nil
}

func (r eventRepo) Insert(_ context.Context, e *model.Event) (uint64, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	row := *e
	row.ID = r.g.st.nextID()
	row.Tags = nil
	r.g.st.events[row.ID] = row
	r.g.wrote()
	return row.ID, nil
}

func (r eventRepo) Update(_ context.Context, e *model.Event) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	cur, ok := r.g.st.events[e.ID]
	if !ok {
		return ports.ErrNotFound
	}
	row := *e
	row.CreatorUserID = cur.CreatorUserID
	row.Tags = cur.Tags
	r.g.st.events[e.ID] = row
	r.g.wrote()
	return nil
}

func (r eventRepo) Delete(_ context.Context, id uint64) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	if _, ok := r.g.st.events[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.g.st.events, id)
	r.g.wrote()
	return nil
}

func (r eventRepo) ReplaceTags(_ context.Context, eventID uint64, tags []string) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	e, ok := r.g.st.events[eventID]
	if !ok {
		return ports.ErrNotFound
	}
	e.Tags = append([]string(nil), tags...)
	r.g.st.events[eventID] = e
	r.g.wrote()
	return nil
}

func (r eventRepo) matching(f model.EventFilter) []model.Event {
	var out []model.Event
	for _, e := range r.g.st.events {
		if f.Name != "" && !containsFold(e.Name, f.Name) {
			continue
		}
		if f.StartDate != nil && e.StartDate.UTC().Format(time.DateOnly) != f.StartDate.UTC().Format(time.DateOnly) {
			continue
		}
		if f.Tag != "" {
			hit := false
			for _, t := range e.Tags {
				if containsFold(t, f.Tag) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r eventRepo) List(_ context.Context, f model.EventFilter, limit, offset int) ([]model.EventListItem, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	page := window(r.matching(f), limit, offset)
	items := make([]model.EventListItem, 0, len(page))
	for _, e := range page {
		v := r.g.st.venues[e.VenueID]
		items = append(items, model.EventListItem{
			ID:                   e.ID,
			Name:                 e.Name,
			Description:          e.Description,
			StartDate:            e.StartDate,
			DurationInMinutes:    e.DurationInMinutes,
			Price:                e.Price,
			EnabledForEnrollment: e.EnabledForEnrollment,
			MaxAssistance:        e.MaxAssistance,
			CreatorUser:          r.g.st.users[e.CreatorUserID].Summary(),
			EventLocation: model.VenueSummary{
				ID:          v.ID,
				Name:        v.Name,
				FullAddress: v.FullAddress,
				MaxCapacity: v.MaxCapacity,
			},
			Tags: sortedTags(e.Tags),
		})
	}
	return items, nil
}

func (r eventRepo) Count(_ context.Context, f model.EventFilter) (int, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	return len(r.matching(f)), nil
}

type enrollmentRepo struct{ g *Gateway }

func (r enrollmentRepo) Count(_ context.Context, eventID uint64) (int, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	n := 0
	for k := range r.g.st.enrollments {
		if k.eventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r enrollmentRepo) Exists(_ context.Context, eventID, userID uint64) (bool, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	_, ok := r.g.st.enrollments[enrollmentKey{eventID, userID}]
	return ok, nil
}

func (r enrollmentRepo) Insert(_ context.Context, en *model.Enrollment) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	k := enrollmentKey{en.EventID, en.UserID}
	if _, ok := r.g.st.enrollments[k]; ok {
		return ports.ErrDuplicate
	}
	r.g.st.enrollments[k] = *en
	r.g.wrote()
	return nil
}

func (r enrollmentRepo) Delete(_ context.Context, eventID, userID uint64) error {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	k := enrollmentKey{eventID, userID}
	if _, ok := r.g.st.enrollments[k]; !ok {
		return ports.ErrNotFound
	}
	delete(r.g.st.enrollments, k)
	r.g.wrote()
	return nil
}

func window[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortedTags(tags []string) []string {
	out := append([]string{}, tags...)
	sort.Strings(out)
	return out
}
