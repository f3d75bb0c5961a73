// Package store is the persistence layer, a thin sqlx wrapper over
// sqlite. Multi-row writes go through explicit transactions so partial
// states are never observable to concurrent readers.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned for lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("already exists")
)

type Store struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) *Store { return &Store{DB: db} }

// Open opens a sqlite database and prepares the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY churn under concurrent writes.
	db.SetMaxOpenConns(1)
	s := New(db)
	if err := s.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// InitSchema creates all tables if they do not exist.
func (s *Store) InitSchema() error {
	if _, err := s.DB.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// InTx runs fn inside a transaction, committing on nil and rolling back
// on error or panic.
func (s *Store) InTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
