package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-enrollment-api/internal/middleware"
	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports/portstest"
	"github.com/iliyamo/event-enrollment-api/internal/queue"
	"github.com/iliyamo/event-enrollment-api/internal/service"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(method, target, nil), rec), rec
}

func TestWriteErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&service.Error{Kind: service.KindValidation, Code: "invalid_name", Message: "m"}, http.StatusBadRequest, "invalid_name"},
		{&service.Error{Kind: service.KindNotFound, Code: "event_not_found", Message: "m"}, http.StatusNotFound, "event_not_found"},
		{&service.Error{Kind: service.KindConflict, Code: "already_enrolled", Message: "m"}, http.StatusConflict, "already_enrolled"},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		c, rec := newContext(http.MethodGet, "/")
		require.NoError(t, writeError(c, zerolog.Nop(), tc.err))
		require.Equal(t, tc.status, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tc.code, body["error"])
		require.NotContains(t, body["message"], "refused")
	}
}

func TestParsePage(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/?page=3&size=500")
	require.Equal(t, service.Page{Number: 3, Size: service.MaxPageSize}, parsePage(c))

	c, _ = newContext(http.MethodGet, "/?page=x")
	require.Equal(t, service.Page{Number: 1, Size: 10}, parsePage(c))
}

func TestGetUserID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	_, err := getUserID(c)
	require.Error(t, err)

	c.Set(middleware.UserIDKey, uint64(5))
	id, err := getUserID(c)
	require.NoError(t, err)
	require.Equal(t, uint64(5), id)
}

func TestFlexBool(t *testing.T) {
	for in, want := range map[string]bool{`true`: true, `"1"`: true, `1`: true, `false`: false, `0`: false, `"false"`: false, `null`: false} {
		var b flexBool
		require.NoError(t, json.Unmarshal([]byte(in), &b), in)
		require.Equal(t, want, bool(b), in)
	}
	var b flexBool
	require.Error(t, json.Unmarshal([]byte(`"maybe"`), &b))
}

func TestParseStartDate(t *testing.T) {
	want := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	for _, s := range []string{"2030-06-01T18:00:00Z", "2030-06-01T15:00:00-03:00", "2030-06-01 18:00:00", "2030-06-01T18:00:00"} {
		got, ok := parseStartDate(s)
		require.True(t, ok, s)
		require.True(t, want.Equal(got), s)
	}
	got, ok := parseStartDate("2030-06-01")
	require.True(t, ok)
	require.Equal(t, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = parseStartDate("")
	require.False(t, ok)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.EnrollmentEvent
	done   chan struct{}
}

func (p *recordingPublisher) PublishEnrollment(_ context.Context, ev queue.EnrollmentEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

type countingObserver struct {
	mu   sync.Mutex
	seen map[string]int
}

func (o *countingObserver) Observe(action, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen[action+":"+outcome]++
}

func TestEnrollmentHandlerPublishesAndObserves(t *testing.T) {
	gw := portstest.New()
	ctx := context.Background()
	owner, err := gw.Users().Create(ctx, &model.User{FirstName: "Ann", LastName: "Lee", Username: "ann@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	venue, err := gw.Venues().Insert(ctx, &model.Venue{Name: "Hall", FullAddress: "Street 1", MaxCapacity: 10, CreatorUserID: owner})
	require.NoError(t, err)
	eventID, err := gw.Events().Insert(ctx, &model.Event{Name: "Meetup", Description: "desc", VenueID: venue,
		StartDate: time.Now().UTC().AddDate(0, 0, 10), EnabledForEnrollment: true, MaxAssistance: 5, CreatorUserID: owner})
	require.NoError(t, err)

	pub := &recordingPublisher{done: make(chan struct{}, 1)}
	obs := &countingObserver{seen: map[string]int{}}
	h := NewEnrollmentHandler(service.NewEnrollmentService(gw), pub, obs, zerolog.Nop())

	e := echo.New()
	enroll := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
		c.SetParamNames("id")
		c.SetParamValues(strconv.FormatUint(eventID, 10))
		c.Set(middleware.UserIDKey, owner)
		require.NoError(t, h.Enroll(c))
		return rec
	}

	require.Equal(t, http.StatusCreated, enroll().Code)
	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("enrollment event was not published")
	}
	require.Equal(t, http.StatusConflict, enroll().Code)

	pub.mu.Lock()
	require.Len(t, pub.events, 1)
	require.Equal(t, queue.ActionEnrolled, pub.events[0].Action)
	require.Equal(t, eventID, pub.events[0].EventID)
	require.Equal(t, "Meetup", pub.events[0].EventName)
	pub.mu.Unlock()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(eventID, 10))
	c.Set(middleware.UserIDKey, owner)
	require.NoError(t, h.Unenroll(c))
	require.Equal(t, http.StatusOK, rec.Code)
	select {
	case <-pub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("unenrollment event was not published")
	}

	pub.mu.Lock()
	require.Len(t, pub.events, 2)
	require.Equal(t, queue.ActionUnenrolled, pub.events[1].Action)
	require.Equal(t, "Meetup", pub.events[1].EventName)
	pub.mu.Unlock()

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Equal(t, 1, obs.seen["enroll:ok"])
	require.Equal(t, 1, obs.seen["enroll:already_enrolled"])
	require.Equal(t, 1, obs.seen["unenroll:ok"])
}

func TestBindEvent(t *testing.T) {
	bind := func(body string) (model.EventInput, error) {
		req := httptest.NewRequest(http.MethodPut, "/api/event/5", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := echo.New().NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("5")
		return bindEvent(c)
	}

	in, err := bind(`{"name":"Meetup","id_event_location":3,"start_date":"2030-01-02","enabled_for_enrollment":"1","tags":["go"]}`)
	require.NoError(t, err)
	require.Equal(t, "Meetup", in.Name)
	require.Equal(t, uint64(3), in.VenueID)
	require.True(t, in.EnabledForEnrollment)
	require.Equal(t, time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), in.StartDate)
	require.Equal(t, []string{"go"}, in.Tags)

	_, err = bind(`{"start_date":"2030-01-02","enabled_for_enrollment":"maybe"}`)
	require.Equal(t, "invalid_body", service.CodeOf(err))

	_, err = bind(`{"name":"Meetup"}`)
	require.Equal(t, "invalid_start_date", service.CodeOf(err))
}
