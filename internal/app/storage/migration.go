package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"slices"

	"github.com/ErikKalkoken/go-set"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsSchema = `
CREATE TABLE IF NOT EXISTS migrations(
	id INTEGER PRIMARY KEY NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	name TEXT NOT NULL,
	UNIQUE (name)
);
`

// ApplyMigrations applies all pending migrations to db in lexical order of their file names.
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(migrationsSchema); err != nil {
		return fmt.Errorf("create migration tracking: %w", err)
	}
	applied, err := listMigrations(db)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	entries, err := embedMigrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	var count int
	for _, name := range names {
		if applied.Contains(name) {
			continue
		}
		b, err := embedMigrations.ReadFile(path.Join("migrations", name))
		if err != nil {
			return err
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(b)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO migrations(name) VALUES(?);`, name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		count++
	}
	if count > 0 {
		slog.Info("Migrations applied", "count", count)
	}
	return nil
}

func listMigrations(db *sql.DB) (set.Set[string], error) {
	var names set.Set[string]
	rows, err := db.Query(`SELECT name FROM migrations;`)
	if err != nil {
		return names, err
	}
	defer rows.Close()
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return names, err
		}
		names.Add(n)
	}
	return names, rows.Err()
}
