package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu   sync.Mutex
	msgs []any
	fail bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.msgs = append(c.msgs, v)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestBroadcastReachesAnonymousAndAuthenticated(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	anon := &fakeConn{}
	authed := &fakeConn{}
	hub.Register(anon, "")
	hub.Register(authed, "u1")

	hub.NotifyTables("products")

	require.Equal(t, 1, anon.count())
	require.Equal(t, 1, authed.count())
}

func TestFailedSendDoesNotBlockOthers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	dead := &fakeConn{fail: true}
	live := &fakeConn{}
	hub.Register(dead, "u1")
	hub.Register(live, "u1")

	hub.SendToUser("u1", map[string]string{"type": "sync"})

	require.Equal(t, 1, live.count(), "healthy connection must still receive")
}

func TestSendToUserTargetsOnlyThatUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	mine := &fakeConn{}
	theirs := &fakeConn{}
	hub.Register(mine, "u1")
	hub.Register(theirs, "u2")

	hub.NotifyOrder("u1", "o1", "shipped")

	require.Equal(t, 1, mine.count())
	require.Zero(t, theirs.count())
}

func TestAuthenticateRehomesConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := &fakeConn{}
	hub.Register(conn, "")

	hub.SendToUser("u1", "before")
	require.Zero(t, conn.count(), "anonymous conn must not receive user messages")

	hub.Authenticate(conn, "u1")
	hub.SendToUser("u1", "after")
	require.Equal(t, 1, conn.count())

	// Still one connection overall; re-homing is a move, not a copy.
	require.Equal(t, 1, hub.ConnCount())
}

func TestUnregisterDropsEmptyBuckets(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := &fakeConn{}
	hub.Register(conn, "u1")
	hub.Unregister(conn)

	require.Zero(t, hub.ConnCount())
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	require.Empty(t, hub.users, "empty user bucket must be removed")
}

func TestUnregisterUnknownConnIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.Unregister(&fakeConn{})
	require.Zero(t, hub.ConnCount())
}
