// Package repository implements the persistence gateway on MySQL.
// Repositories translate driver errors into the sentinels declared in
// internal/ports so callers never depend on database/sql or the driver.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

// MySQL server error numbers the gateway reacts to.
const (
	errDupEntry = 1062
)

// mapErr converts sql.ErrNoRows and duplicate key violations into
// ports sentinels and leaves everything else untouched.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return ports.ErrDuplicate
	}
	return err
}

// requireAffected reports ErrNotFound when an UPDATE or DELETE matched
// no row. The DSN sets clientFoundRows so unchanged rows still count.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}
