package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/beautyops/beautyops/internal/errors"
)

// wrapQueryErr maps sql.ErrNoRows to ErrNotFound and everything else to ErrDatabase
func wrapQueryErr(err error, entity string, key string, value string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(map[string]any{key: value}).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Failed to read %s", entity).
		Mark(ierr.ErrDatabase)
}

func wrapWriteErr(err error, entity string) error {
	return ierr.WithError(err).
		WithHintf("Failed to write %s", entity).
		Mark(ierr.ErrDatabase)
}
