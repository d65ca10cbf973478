// package repositories provides sqlite persistence for all entity types.
//
// Each store implements models.Store[T] for one entity, returning detached
// snapshots and enforcing optimistic concurrency: updates are conditional on
// the row version read by the caller and mint a fresh version on success.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// isConstraintErr reports whether the driver rejected a write because a
// foreign key still references the row.
func isConstraintErr(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}

// affected returns the number of rows touched by a write.
func affected(res sql.Result) (int64, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// nullInt converts a nullable column to an optional int.
func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// nullStr converts a nullable column to an optional string.
func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
