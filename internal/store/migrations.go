package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS simulations (
		id                  TEXT PRIMARY KEY,
		policy              TEXT NOT NULL,
		request             TEXT NOT NULL,
		result              TEXT NOT NULL,
		process_count       INTEGER NOT NULL DEFAULT 0,
		makespan            INTEGER NOT NULL DEFAULT 0,
		avg_waiting_time    REAL NOT NULL DEFAULT 0,
		avg_turnaround_time REAL NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_simulations_policy ON simulations(policy)`,
	`CREATE INDEX IF NOT EXISTS idx_simulations_created_at ON simulations(created_at)`,
}

// alterStatements are column additions that need special handling since
// SQLite has no ADD COLUMN IF NOT EXISTS.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
	indexSQL string // optional index created after the column exists
}{
	{
		table:    "simulations",
		column:   "label",
		alterSQL: "ALTER TABLE simulations ADD COLUMN label TEXT NOT NULL DEFAULT ''",
		indexSQL: "CREATE INDEX IF NOT EXISTS idx_simulations_label ON simulations(label)",
	},
}

// migrate executes all schema DDL statements, alter migrations, and post-migration indexes.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// Execute ALTER TABLE statements idempotently.
	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
		if alter.indexSQL != "" {
			if _, err := db.ExecContext(ctx, alter.indexSQL); err != nil {
				return err
			}
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil // Column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
