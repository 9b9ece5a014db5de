// Package testutil contains utilities for writing tests with storage.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/icrowley/fake"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage"
)

// NewDBInMemory creates and returns a database in memory for tests.
// Important: This variant is not suitable for DB code that runs in goroutines.
func NewDBInMemory() (*sql.DB, *storage.Storage, Factory) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.ApplyMigrations(db); err != nil {
		panic(err)
	}
	st := storage.New(db)
	return db, st, NewFactory(st)
}

// NewDBOnDisk creates and returns a new temporary database on disk for tests.
// The database is automatically removed once the tests have concluded.
func NewDBOnDisk(t testing.TB) (*sql.DB, *storage.Storage, Factory) {
	p := filepath.Join(t.TempDir(), "tasbeehbuddy_test.sqlite")
	db, err := storage.InitDB("file:" + p)
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(db)
	return db, st, NewFactory(st)
}

// MustTruncateTables is like [TruncateTables] but will panic on any error.
func MustTruncateTables(db *sql.DB) {
	if err := TruncateTables(db); err != nil {
		panic(err)
	}
}

// TruncateTables will purge data from all data tables. This is meant for tests.
func TruncateTables(db *sql.DB) error {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = "table" AND name NOT IN ("migrations", "sqlite_sequence")`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	rows.Close()
	for _, n := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s;", n)); err != nil {
			return err
		}
	}
	return nil
}

// Factory creates objects in storage for tests.
type Factory struct {
	st *storage.Storage
}

func NewFactory(st *storage.Storage) Factory {
	return Factory{st: st}
}

// CreateTasbeehSession creates and returns a new session. Empty values are filled with random data.
func (f Factory) CreateTasbeehSession(args ...storage.CreateTasbeehSessionParams) app.Session {
	var arg storage.CreateTasbeehSessionParams
	if len(args) > 0 {
		arg = args[0]
	}
	if arg.Count == 0 {
		arg.Count = rand.IntN(500) + 1
	}
	if arg.Dhikr == "" {
		arg.Dhikr = fake.Word()
	}
	if arg.CompletedAt.IsZero() {
		arg.CompletedAt = time.Now().Add(-time.Duration(rand.IntN(3600)) * time.Second)
	}
	ctx := context.Background()
	id, err := f.st.CreateTasbeehSession(ctx, arg)
	if err != nil {
		panic(err)
	}
	s, err := f.st.GetTasbeehSession(ctx, id)
	if err != nil {
		panic(err)
	}
	return s
}
