// Package sqlite implements the repository interfaces on SQLite.
//
// modernc.org/sqlite is a pure Go port of SQLite, so the binary builds
// without cgo. A database is a single file; ":memory:" works for throwaway
// databases.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB owns the connection pool and hands out the per-table stores.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time. A single pooled connection
	// serialises statements, which keeps "votes = votes + 1" race free and
	// makes ":memory:" databases behave (each connection would otherwise
	// get its own empty database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user store backed by this database.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Art returns the art piece store backed by this database.
func (db *DB) Art() *ArtDB {
	return &ArtDB{conn: db.conn}
}

// migrate creates the schema. Every statement is idempotent.
//
// The mood CHECK mirrors model.Moods; colors and collaborators hold JSON
// arrays.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar        TEXT NOT NULL DEFAULT 'default_avatar',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS art_pieces (
			id            TEXT PRIMARY KEY,
			user_id       TEXT REFERENCES users(id),
			mood          TEXT NOT NULL CHECK (mood IN ('Happy','Sad','Calm','Excited','Angry','Inspired','Mixed')),
			image_url     TEXT NOT NULL,
			prompt        TEXT NOT NULL DEFAULT '',
			style         TEXT NOT NULL DEFAULT 'Abstract',
			colors        TEXT NOT NULL DEFAULT '[]',
			votes         INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
			collaborators TEXT NOT NULL DEFAULT '[]',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_art_pieces_user_created ON art_pieces(user_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_art_pieces_user_mood ON art_pieces(user_id, mood, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating art_pieces table: %w", err)
	}

	return nil
}
