// Package storage provides persistent storage for the app on sqlite.
// All DB access is abstracted through methods of [Storage].
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("object not found")

// Storage provides access to the database.
type Storage struct {
	db *sql.DB
}

// New returns a new Storage.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// InitDB opens the database at dataSourceName, applies pending migrations and returns it.
func InitDB(dataSourceName string) (*sql.DB, error) {
	v := url.Values{}
	v.Add("_fk", "on")
	v.Add("_journal_mode", "WAL")
	v.Add("_synchronous", "normal")
	v.Add("_busy_timeout", "5000")
	dsn := fmt.Sprintf("%s?%s", dataSourceName, v.Encode())
	slog.Debug("Connecting to sqlite", "dsn", dsn)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("Connected to database")
	if err := ApplyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
