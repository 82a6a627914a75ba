package store

import (
	"database/sql"
	"strings"
)

func isAffected(res sql.Result) bool {
	rows, err := res.RowsAffected()
	if err != nil {
		return true
	}
	return rows != 0
}

func getAffected(res sql.Result) int64 {
	ret, err := res.RowsAffected()
	if err != nil {
		return -1
	}
	return ret
}

// isUniqueViolation reports whether err came from a UNIQUE constraint
// failure. modernc.org/sqlite does not expose a typed error with a
// stable code across driver versions for every caller, so this matches
// on the SQLite error text, same as it appears via database/sql.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
