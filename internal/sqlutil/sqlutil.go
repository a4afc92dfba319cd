// Package sqlutil holds small helpers shared by SQL query code.
package sqlutil

import (
	"database/sql"
	"strings"
)

// InClause returns the placeholder list for `col IN (...)` and its args. An
// empty list yields "NULL", which matches nothing.
func InClause[T any](items []T) (string, []any) {
	if len(items) == 0 {
		return "NULL", nil
	}
	marks := make([]string, len(items))
	args := make([]any, len(items))
	for i, item := range items {
		marks[i] = "?"
		args[i] = item
	}
	return strings.Join(marks, ", "), args
}

// ScanRows collects one value per row and closes rows.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) (out []T, err error) {
	defer func() {
		if cerr := rows.Close(); err == nil {
			err = cerr
		}
	}()
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
