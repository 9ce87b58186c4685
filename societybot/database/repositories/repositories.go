package repositories

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned by lookups that matched no row. The postgres
// implementations translate sql.ErrNoRows into it so callers can branch
// without knowing the backing store.
var ErrNotFound = errors.New("record not found")

func translateNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
