package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"partsync/internal/models"
	"partsync/internal/repos"
)

// identityResponse is what the hosted identity provider returns for a valid
// one-time session id.
type identityResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// AuthService exchanges provider session ids for local sessions and resolves
// bearer tokens on every authenticated request. Sessions expire lazily: an
// expired row is deleted the first time it is seen.
type AuthService struct {
	store       *repos.Store
	client      *http.Client
	providerURL string
	sessionTTL  time.Duration
	log         zerolog.Logger
}

func NewAuthService(store *repos.Store, providerURL string, sessionTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:       store,
		client:      &http.Client{Timeout: 10 * time.Second},
		providerURL: providerURL,
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

// SessionTTL is exposed so the handler can set the cookie lifetime to match.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Exchange trades a provider session id for a local user and session token.
// Users are keyed by email: a returning user gets a fresh session, a new
// email gets a user row first.
func (s *AuthService) Exchange(ctx context.Context, sessionID string) (models.User, models.UserSession, error) {
	var user models.User
	var session models.UserSession
	if sessionID == "" {
		return user, session, invalidf("session id is required")
	}

	ident, err := s.fetchIdentity(ctx, sessionID)
	if err != nil {
		return user, session, err
	}
	if ident.Email == "" || ident.SessionToken == "" {
		return user, session, &UpstreamAuthError{Err: errors.New("incomplete identity response")}
	}

	err = s.store.WithTx(func(tx *sql.Tx) error {
		user, err = s.store.GetUserByEmail(tx, ident.Email)
		if errors.Is(err, repos.ErrNotFound) {
			user = models.User{Email: ident.Email, Name: ident.Name, Picture: ident.Picture}
			if err := s.store.InsertUser(tx, &user); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		session = models.UserSession{
			UserID:       user.ID,
			SessionToken: ident.SessionToken,
			ExpiresAt:    time.Now().Add(s.sessionTTL).UnixMilli(),
		}
		return s.store.InsertSession(tx, &session)
	})
	return user, session, err
}

func (s *AuthService) fetchIdentity(ctx context.Context, sessionID string) (identityResponse, error) {
	var ident identityResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.providerURL, nil)
	if err != nil {
		return ident, &UpstreamAuthError{Err: err}
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := s.client.Do(req)
	if err != nil {
		return ident, &UpstreamAuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return ident, invalidf("invalid session id")
		}
		return ident, &UpstreamAuthError{Err: fmt.Errorf("provider returned %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return ident, &UpstreamAuthError{Err: err}
	}
	return ident, nil
}

// ResolveToken maps a session token to its user id. Unknown, expired and
// empty tokens all come back ErrUnauthenticated.
func (s *AuthService) ResolveToken(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	session, err := s.store.GetSessionByToken(token)
	if errors.Is(err, repos.ErrNotFound) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", err
	}
	if session.ExpiresAt <= time.Now().UnixMilli() {
		if err := s.store.DeleteSessionByToken(token); err != nil {
			s.log.Warn().Err(err).Msg("expired session cleanup failed")
		}
		return "", ErrUnauthenticated
	}
	return session.UserID, nil
}

// CurrentUser resolves a token to the full user record.
func (s *AuthService) CurrentUser(token string) (models.User, error) {
	userID, err := s.ResolveToken(token)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.store.GetUser(userID)
	if errors.Is(err, repos.ErrNotFound) {
		return u, ErrUnauthenticated
	}
	return u, err
}

// Logout drops the session; unknown tokens succeed quietly.
func (s *AuthService) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSessionByToken(token)
}

// ListCustomers backs the admin customer view.
func (s *AuthService) ListCustomers() ([]models.User, error) {
	return s.store.ListUsers()
}
