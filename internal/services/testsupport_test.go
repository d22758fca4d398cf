package services

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"partsync/internal/cache"
	"partsync/internal/clock"
	"partsync/internal/realtime"
	"partsync/internal/repos"
)

func newTestStore(t *testing.T) *repos.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return repos.NewStore(db, clock.New())
}

func newTestCatalog(t *testing.T, store *repos.Store) (*CatalogService, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub(zerolog.Nop())
	return NewCatalogService(store, cache.New(64, 0), hub, zerolog.Nop()), hub
}

// recorderConn captures hub messages for assertions.
type recorderConn struct {
	msgs []any
	fail bool
}

func (c *recorderConn) WriteJSON(v any) error {
	if c.fail {
		return sql.ErrConnDone
	}
	c.msgs = append(c.msgs, v)
	return nil
}

func (c *recorderConn) Close() error { return nil }
