package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/uptrace/bun"
)

// schemaVersion is the current value InitDB leaves in PRAGMA user_version
// once every migration step below has run. Readers on an older schema
// are migrated forward; readers on a newer schema (from a future binary)
// are left untouched.
//
// Version 1 created the series and jobs tables; version 2 added the
// title-selection cache.
const schemaVersion = 2

func getUserVersion(ctx context.Context, db bun.IDB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func setUserVersion(ctx context.Context, db bun.IDB, v int) error {
	_, err := db.ExecContext(ctx, "PRAGMA user_version = "+strconv.Itoa(v))
	return err
}

func createSeriesTable(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*seriesModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func createJobsTable(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*jobModel)(nil)).
		IfNotExists().
		ForeignKey(`("series_id") REFERENCES "series" ("id")`).
		Exec(ctx)
	return err
}

func createSelectionsTable(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*selectionModel)(nil)).
		IfNotExists().
		ForeignKey(`("series_id") REFERENCES "series" ("id")`).
		Exec(ctx)
	return err
}

func createJobIndexes(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateIndex().
		Model((*jobModel)(nil)).
		Index("idx_jobs_series_episode").
		Column("series_id", "episode").
		Unique().
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}
	if _, err := db.NewCreateIndex().
		Model((*jobModel)(nil)).
		Index("idx_jobs_stage_priority").
		Column("stage", "priority", "created_at").
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateIndex().
		Model((*jobModel)(nil)).
		Index("idx_jobs_series").
		Column("series_id").
		IfNotExists().
		Exec(ctx)
	return err
}

func createSeriesIndex(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateIndex().
		Model((*seriesModel)(nil)).
		Index("idx_series_catalog").
		Column("catalog_id").
		Unique().
		IfNotExists().
		Exec(ctx)
	return err
}

func migrate(ctx context.Context, tx bun.IDB, from int) error {
	if from < 1 {
		if err := createSeriesTable(ctx, tx); err != nil {
			return err
		}
		if err := createSeriesIndex(ctx, tx); err != nil {
			return err
		}
		if err := createJobsTable(ctx, tx); err != nil {
			return err
		}
		if err := createJobIndexes(ctx, tx); err != nil {
			return err
		}
	}
	if from < 2 {
		if err := createSelectionsTable(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func initDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return err
	}
	current, err := getUserVersion(ctx, db)
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := migrate(ctx, tx, current); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := setUserVersion(ctx, tx, schemaVersion); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// InitDB initializes the database schema required by the store package.
//
// It creates the series, jobs and selections tables and their indexes
// inside a single transaction, gated by PRAGMA user_version so it only
// runs the migrations a given database file is missing. InitDB is
// idempotent and may be safely called multiple times.
func InitDB(ctx context.Context, db *bun.DB) error {
	return initDB(ctx, db)
}

// MustInitDB behaves like InitDB but panics if initialization fails.
// Intended for application bootstrap code where schema failure is
// unrecoverable.
func MustInitDB(ctx context.Context, db *bun.DB) {
	if err := initDB(ctx, db); err != nil {
		panic(err)
	}
}
