package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-enrollment-api/internal/model"
	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

var eventCols = []string{"id", "name", "description", "id_event_location", "start_date", "duration_in_minutes",
	"price", "enabled_for_enrollment", "max_assistance", "id_creator_user"}

func TestEventFindByIDCoercesFlagAndLoadsTags(t *testing.T) {
	store, mock := newMock(t)
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("FROM events WHERE id=? LIMIT 1")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(3, "GopherCon", "Go talks", 2, start, 120, 15.5, int64(1), 40, 9))
	mock.ExpectQuery(q("FROM event_tags et")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id_event", "name"}).AddRow(3, "go").AddRow(3, "conf"))

	e, err := store.Events().FindByID(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, e.EnabledForEnrollment)
	require.Equal(t, start, e.StartDate)
	require.Equal(t, 15.5, e.Price)
	require.Equal(t, []string{"go", "conf"}, e.Tags)
}

func TestEventFindForUpdateLocksRow(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(q("FROM events WHERE id=? FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(3, "GopherCon", "Go talks", 2, time.Now(), 120, 0, int64(0), 40, 9))
	mock.ExpectQuery(q("FROM event_tags et")).
		WillReturnRows(sqlmock.NewRows([]string{"id_event", "name"}))

	e, err := store.Events().FindByIDForUpdate(context.Background(), 3)
	require.NoError(t, err)
	require.False(t, e.EnabledForEnrollment)
	require.Equal(t, []string{}, e.Tags)
}

func TestEventInsertWritesTinyint(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO events")).
		WithArgs("GopherCon", "Go talks", uint64(2), sqlmock.AnyArg(), 90, 0.0, 1, 30, uint64(9)).
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := store.Events().Insert(context.Background(), &model.Event{
		Name: "GopherCon", Description: "Go talks", VenueID: 2, StartDate: time.Now(),
		DurationInMinutes: 90, EnabledForEnrollment: true, MaxAssistance: 30, CreatorUserID: 9,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(12), id)
}

func TestEventReplaceTags(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM event_tags WHERE id_event=?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("INSERT INTO tags (name) VALUES (?) ON DUPLICATE KEY UPDATE id=LAST_INSERT_ID(id)")).
		WithArgs("go").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectExec(q("INSERT INTO event_tags (id_event, id_tag) VALUES (?,?)")).
		WithArgs(uint64(4), int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Events().ReplaceTags(context.Background(), 4, []string{"go"}))
}

func TestEventReplaceTagsCollatedDuplicate(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM event_tags WHERE id_event=?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, name := range []string{"café", "cafe"} {
		mock.ExpectExec(q("INSERT INTO tags (name) VALUES (?) ON DUPLICATE KEY UPDATE id=LAST_INSERT_ID(id)")).
			WithArgs(name).
			WillReturnResult(sqlmock.NewResult(8, 1))
		mock.ExpectExec(q("INSERT INTO event_tags (id_event, id_tag) VALUES (?,?) ON DUPLICATE KEY UPDATE id_tag=id_tag")).
			WithArgs(uint64(4), int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, store.Events().ReplaceTags(context.Background(), 4, []string{"café", "cafe"}))
}

func TestEventDeleteRemovesTagLinks(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM event_tags WHERE id_event=?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM events WHERE id=?")).
		WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Events().Delete(context.Background(), 4)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestEventWhere(t *testing.T) {
	cond, args := eventWhere(model.EventFilter{})
	require.Equal(t, "1=1", cond)
	require.Empty(t, args)

	day := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)
	cond, args = eventWhere(model.EventFilter{Name: "Conf", StartDate: &day, Tag: "GO"})
	require.Contains(t, cond, "LOWER(e.name) LIKE ?")
	require.Contains(t, cond, "e.start_date >= ? AND e.start_date < ?")
	require.Contains(t, cond, "LOWER(t.name) LIKE ?")
	require.Equal(t, []any{
		"%conf%",
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		"%go%",
	}, args)
}

func TestEventWhereEscapesWildcards(t *testing.T) {
	cond, args := eventWhere(model.EventFilter{Name: "100%", Tag: `C_\`})
	require.Contains(t, cond, `LOWER(e.name) LIKE ? ESCAPE '\\'`)
	require.Contains(t, cond, `LOWER(t.name) LIKE ? ESCAPE '\\'`)
	require.Equal(t, []any{`%100\%%`, `%c\_\\%`}, args)

	_, args = eventWhere(model.EventFilter{Name: "_"})
	require.Equal(t, []any{`%\_%`}, args)
}

func TestEventListAndCount(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()
	f := model.EventFilter{Name: "conf"}
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("SELECT COUNT(*) FROM events e WHERE LOWER(e.name) LIKE ?")).
		WithArgs("%conf%").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(21))
	mock.ExpectQuery(q("ORDER BY e.start_date ASC, e.id ASC")).
		WithArgs("%conf%", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "start_date", "duration_in_minutes", "price", "enabled_for_enrollment", "max_assistance",
			"u.id", "first_name", "last_name", "username",
			"el.id", "el.name", "full_address", "max_capacity",
		}).
			AddRow(11, "Conf 11", "desc", start, 60, 0, int64(1), 10, 1, "Alice", "Smith", "alice@example.com", 2, "Hall", "Street 1", 100).
			AddRow(12, "Conf 12", "desc", start.Add(time.Hour), 60, 0, int64(0), 10, 1, "Alice", "Smith", "alice@example.com", 2, "Hall", "Street 1", 100))
	mock.ExpectQuery(q("WHERE et.id_event IN (?,?)")).
		WithArgs(uint64(11), uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"id_event", "name"}).AddRow(12, "go"))

	total, err := store.Events().Count(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 21, total)

	items, err := store.Events().List(ctx, f, 10, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.True(t, items[0].EnabledForEnrollment)
	require.False(t, items[1].EnabledForEnrollment)
	require.Equal(t, "alice@example.com", items[0].CreatorUser.Username)
	require.Equal(t, 100, items[0].EventLocation.MaxCapacity)
	require.Equal(t, []string{}, items[0].Tags)
	require.Equal(t, []string{"go"}, items[1].Tags)
}

func TestEventFindDetailWithoutLocation(t *testing.T) {
	store, mock := newMock(t)
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("LEFT JOIN provinces p")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "start_date", "duration_in_minutes", "price", "enabled_for_enrollment", "max_assistance",
			"el.id", "el.name", "full_address", "max_capacity", "el.latitude", "el.longitude",
			"l.id", "l.name", "l.latitude", "l.longitude",
			"p.id", "p.name", "p.full_name", "p.latitude", "p.longitude", "p.display_order",
			"u.id", "first_name", "last_name", "username",
		}).AddRow(5, "Jazz", "Night", start, 60, 20, int64(1), 50,
			2, "Club", "Street 9", 80, nil, nil,
			nil, nil, nil, nil,
			nil, nil, nil, nil, nil, nil,
			1, "Alice", "Smith", "alice@example.com"))
	mock.ExpectQuery(q("FROM event_tags et")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id_event", "name"}))

	d, err := store.Events().FindDetail(context.Background(), 5)
	require.NoError(t, err)
	require.Nil(t, d.EventLocation.Location)
	require.Equal(t, "Club", d.EventLocation.Name)
	require.Equal(t, "Alice", d.CreatorUser.FirstName)
	require.Equal(t, []string{}, d.Tags)
}
