// Package repos is the relational layer: one Store over database/sql with
// explicit SQL per entity, as small scan helpers and transactional writes.
package repos

import (
	"database/sql"
	"errors"

	"partsync/internal/clock"
)

var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx so read helpers work inside
// and outside transactions.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Store struct {
	db    *sql.DB
	clock *clock.Clock
}

func NewStore(db *sql.DB, clk *clock.Clock) *Store {
	return &Store{db: db, clock: clk}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// NowMillis exposes the store's clock so services stamp rows and watermarks
// from the same monotonic source.
func (s *Store) NowMillis() int64 {
	return s.clock.NowMillis()
}

func (s *Store) WithTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
