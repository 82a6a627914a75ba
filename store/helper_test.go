package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory sqlite database, wires it through bun
// with the sqlite dialect, and runs InitDB against it. file::memory:
// plus a shared cache and a single open connection keep the whole
// schema visible across the test's queries.
func openTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", "file::memory:?_pragma=busy_timeout(5000)&cache=shared")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := InitDB(context.Background(), db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return db
}
