package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	s := Settings{User: "app", Host: "db", Port: "3306", Name: "events"}
	require.Equal(t, "app@tcp(db:3306)/events?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true", s.DSN())

	s.Pass = "secret"
	require.True(t, strings.HasPrefix(s.DSN(), "app:secret@tcp(db:3306)/"))
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			require.True(t, names[strings.TrimSuffix(name, ".up.sql")+".down.sql"], "missing down for %s", name)
		case strings.HasSuffix(name, ".down.sql"):
			require.True(t, names[strings.TrimSuffix(name, ".down.sql")+".up.sql"], "missing up for %s", name)
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}
}
