package repos

import (
	"database/sql"

	"github.com/google/uuid"

	"partsync/internal/models"
)

const userCols = `id, email, name, picture, created_at, updated_at, deleted_at`

func scanUser(row interface{ Scan(dest ...any) error }) (models.User, error) {
	var u models.User
	var del sql.NullInt64
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.CreatedAt, &u.UpdatedAt, &del)
	u.DeletedAt = tombstone(del)
	return u, err
}

func (s *Store) InsertUser(q DBTX, u *models.User) error {
	s.stampNew(&u.Syncable)
	_, err := q.Exec(`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		u.ID, u.Email, u.Name, u.Picture, u.CreatedAt, u.UpdatedAt)
	return err
}

func (s *Store) GetUser(id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

func (s *Store) GetUserByEmail(q DBTX, email string) (models.User, error) {
	u, err := scanUser(q.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

func (s *Store) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ---- sessions ----

func (s *Store) InsertSession(q DBTX, sess *models.UserSession) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.CreatedAt = s.clock.NowMillis()
	_, err := q.Exec(`INSERT INTO user_sessions (id, user_id, session_token, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.SessionToken, sess.ExpiresAt, sess.CreatedAt)
	return err
}

func (s *Store) GetSessionByToken(token string) (models.UserSession, error) {
	var sess models.UserSession
	err := s.db.QueryRow(`SELECT id, user_id, session_token, expires_at, created_at
		FROM user_sessions WHERE session_token = ?`, token).
		Scan(&sess.ID, &sess.UserID, &sess.SessionToken, &sess.ExpiresAt, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return sess, ErrNotFound
	}
	return sess, err
}

func (s *Store) DeleteSessionByToken(token string) error {
	_, err := s.db.Exec(`DELETE FROM user_sessions WHERE session_token = ?`, token)
	return err
}
