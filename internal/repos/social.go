package repos

import (
	"database/sql"

	"partsync/internal/models"
)

const favoriteCols = `id, user_id, product_id, created_at, updated_at, deleted_at`

func scanFavorite(row interface{ Scan(dest ...any) error }) (models.Favorite, error) {
	var f models.Favorite
	var del sql.NullInt64
	err := row.Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt, &f.UpdatedAt, &del)
	f.DeletedAt = tombstone(del)
	return f, err
}

func (s *Store) InsertFavorite(q DBTX, f *models.Favorite) error {
	s.stampNew(&f.Syncable)
	_, err := q.Exec(`INSERT INTO favorites (`+favoriteCols+`) VALUES (?, ?, ?, ?, ?, NULL)`,
		f.ID, f.UserID, f.ProductID, f.CreatedAt, f.UpdatedAt)
	return err
}

// GetFavorite looks up by user and product regardless of tombstone, so a
// toggle can restore a soft-deleted row instead of violating the unique key.
func (s *Store) GetFavorite(q DBTX, userID, productID string) (models.Favorite, error) {
	f, err := scanFavorite(q.QueryRow(`SELECT `+favoriteCols+` FROM favorites WHERE user_id = ? AND product_id = ?`,
		userID, productID))
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

func (s *Store) GetFavoriteByID(q DBTX, id string) (models.Favorite, error) {
	f, err := scanFavorite(q.QueryRow(`SELECT `+favoriteCols+` FROM favorites WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

func (s *Store) ListFavorites(userID string) ([]models.Favorite, error) {
	rows, err := s.db.Query(`SELECT `+favoriteCols+` FROM favorites WHERE user_id = ? AND deleted_at IS NULL`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) SetFavoriteDeleted(q DBTX, id string, deleted bool) error {
	now := s.clock.NowMillis()
	var res sql.Result
	var err error
	if deleted {
		res, err = q.Exec(`UPDATE favorites SET deleted_at = ?, updated_at = ? WHERE id = ?`, now, now, id)
	} else {
		res, err = q.Exec(`UPDATE favorites SET deleted_at = NULL, updated_at = ? WHERE id = ?`, now, id)
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) FavoritesChangedSince(userID string, since int64) ([]models.Favorite, error) {
	rows, err := s.db.Query(`SELECT `+favoriteCols+` FROM favorites WHERE user_id = ? AND updated_at > ?`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ---- comments ----

const commentCols = `id, product_id, user_id, user_name, user_picture, text, rating, created_at, updated_at, deleted_at`

func scanComment(row interface{ Scan(dest ...any) error }) (models.Comment, error) {
	var c models.Comment
	var del sql.NullInt64
	var rating sql.NullInt64
	err := row.Scan(&c.ID, &c.ProductID, &c.UserID, &c.UserName, &c.UserPicture, &c.Text, &rating,
		&c.CreatedAt, &c.UpdatedAt, &del)
	c.DeletedAt = tombstone(del)
	if rating.Valid {
		v := int(rating.Int64)
		c.Rating = &v
	}
	return c, err
}

func (s *Store) InsertComment(q DBTX, c *models.Comment) error {
	s.stampNew(&c.Syncable)
	var rating any
	if c.Rating != nil {
		rating = *c.Rating
	}
	_, err := q.Exec(`INSERT INTO comments (`+commentCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		c.ID, c.ProductID, c.UserID, c.UserName, c.UserPicture, c.Text, rating, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *Store) ListComments(productID string, skip, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT `+commentCols+` FROM comments
		WHERE product_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, productID, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CommentRating returns how many rated comments a product has and their
// average, zero values when unrated.
func (s *Store) CommentRating(productID string) (count int, avg float64, err error) {
	var avgN sql.NullFloat64
	err = s.db.QueryRow(`SELECT COUNT(*), AVG(rating) FROM comments
		WHERE product_id = ? AND deleted_at IS NULL AND rating IS NOT NULL`, productID).
		Scan(&count, &avgN)
	if avgN.Valid {
		avg = avgN.Float64
	}
	return count, avg, err
}
