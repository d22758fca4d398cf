package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"partsync/internal/models"
)

func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get("X-Session-ID")
		if sessionID == "bad" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":            "provider-1",
			"email":         "jane@example.com",
			"name":          "Jane",
			"picture":       "https://example.com/jane.png",
			"session_token": "tok-" + sessionID,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeCreatesUserOnceAndSessions(t *testing.T) {
	store := newTestStore(t)
	provider := fakeProvider(t)
	svc := NewAuthService(store, provider.URL, 7*24*time.Hour, zerolog.Nop())

	user1, session1, err := svc.Exchange(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if user1.Email != "jane@example.com" || session1.SessionToken != "tok-s1" {
		t.Fatalf("unexpected exchange result user=%+v session=%+v", user1, session1)
	}

	// Same email on a second login reuses the user row with a new session.
	user2, session2, err := svc.Exchange(context.Background(), "s2")
	if err != nil {
		t.Fatal(err)
	}
	if user2.ID != user1.ID {
		t.Fatalf("expected same user, got %s and %s", user1.ID, user2.ID)
	}
	if session2.SessionToken == session1.SessionToken {
		t.Fatal("expected a distinct session token")
	}

	userID, err := svc.ResolveToken(session1.SessionToken)
	if err != nil || userID != user1.ID {
		t.Fatalf("resolve: got %q err=%v", userID, err)
	}
}

func TestExchangeRejectedSessionID(t *testing.T) {
	store := newTestStore(t)
	provider := fakeProvider(t)
	svc := NewAuthService(store, provider.URL, time.Hour, zerolog.Nop())

	_, _, err := svc.Exchange(context.Background(), "bad")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for rejected session id, got %v", err)
	}
}

func TestExchangeProviderDown(t *testing.T) {
	store := newTestStore(t)
	svc := NewAuthService(store, "http://127.0.0.1:1", time.Hour, zerolog.Nop())

	_, _, err := svc.Exchange(context.Background(), "s1")
	var upstream *UpstreamAuthError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamAuthError, got %v", err)
	}
}

func TestResolveTokenExpiryIsLazy(t *testing.T) {
	store := newTestStore(t)
	svc := NewAuthService(store, "unused", time.Hour, zerolog.Nop())
	user := seedUser(t, store, "expired@example.com")

	session := models.UserSession{
		UserID:       user.ID,
		SessionToken: "stale-token",
		ExpiresAt:    time.Now().Add(-time.Minute).UnixMilli(),
	}
	err := store.WithTx(func(tx *sql.Tx) error {
		return store.InsertSession(tx, &session)
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ResolveToken("stale-token"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	// The expired row is gone after first sight.
	if _, err := store.GetSessionByToken("stale-token"); err == nil {
		t.Fatal("expected expired session to be deleted")
	}

	if _, err := svc.ResolveToken(""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty token: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.ResolveToken("never-issued"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("unknown token: expected ErrUnauthenticated, got %v", err)
	}
}
