package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"partsync/internal/models"
	"partsync/internal/realtime"
	"partsync/internal/repos"
)

// SocialService covers favorites and product comments. Favorites are also
// reachable through sync push; both paths share the same toggle semantics.
type SocialService struct {
	store *repos.Store
	hub   *realtime.Hub
	log   zerolog.Logger
}

func NewSocialService(store *repos.Store, hub *realtime.Hub, log zerolog.Logger) *SocialService {
	return &SocialService{store: store, hub: hub, log: log}
}

// ToggleFavorite flips a product's favorite state for the user. A tombstoned
// row is restored rather than duplicated, keeping the unique key intact.
// Returns the resulting state.
func (s *SocialService) ToggleFavorite(userID, productID string) (bool, error) {
	if _, err := s.store.GetProduct(s.store.DB(), productID); err != nil {
		return false, err
	}
	var favorited bool
	err := s.store.WithTx(func(tx *sql.Tx) error {
		existing, err := s.store.GetFavorite(tx, userID, productID)
		switch {
		case errors.Is(err, repos.ErrNotFound):
			fav := models.Favorite{UserID: userID, ProductID: productID}
			if err := s.store.InsertFavorite(tx, &fav); err != nil {
				return err
			}
			favorited = true
			return s.store.AppendChange(tx, models.TableFavorites, fav.ID, models.ActionCreated, userID)
		case err != nil:
			return err
		case existing.IsDeleted():
			if err := s.store.SetFavoriteDeleted(tx, existing.ID, false); err != nil {
				return err
			}
			favorited = true
			return s.store.AppendChange(tx, models.TableFavorites, existing.ID, models.ActionCreated, userID)
		default:
			if err := s.store.SetFavoriteDeleted(tx, existing.ID, true); err != nil {
				return err
			}
			favorited = false
			return s.store.AppendChange(tx, models.TableFavorites, existing.ID, models.ActionDeleted, userID)
		}
	})
	if err != nil {
		return false, err
	}
	s.hub.SendToUser(userID, map[string]any{"type": "sync", "tables": []string{models.TableFavorites}})
	return favorited, nil
}

func (s *SocialService) ListFavorites(userID string) ([]models.Favorite, error) {
	return s.store.ListFavorites(userID)
}

// IsFavorite reports whether the product is currently favorited.
func (s *SocialService) IsFavorite(userID, productID string) (bool, error) {
	f, err := s.store.GetFavorite(s.store.DB(), userID, productID)
	if errors.Is(err, repos.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !f.IsDeleted(), nil
}

// ---- comments ----

// AddComment posts a comment, optionally with a 1 to 5 rating. The author's
// display name and picture are denormalized onto the row at write time.
func (s *SocialService) AddComment(userID, productID, text string, rating *int) (models.Comment, error) {
	var comment models.Comment
	if strings.TrimSpace(text) == "" {
		return comment, invalidf("comment text is required")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return comment, invalidf("rating must be between 1 and 5")
	}
	if _, err := s.store.GetProduct(s.store.DB(), productID); err != nil {
		return comment, err
	}
	user, err := s.store.GetUser(userID)
	if err != nil {
		return comment, err
	}

	comment = models.Comment{
		ProductID:   productID,
		UserID:      userID,
		UserName:    user.Name,
		UserPicture: user.Picture,
		Text:        text,
		Rating:      rating,
	}
	err = s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.InsertComment(tx, &comment); err != nil {
			return err
		}
		return s.store.AppendChange(tx, "comments", comment.ID, models.ActionCreated, userID)
	})
	if err != nil {
		return comment, err
	}
	comment.IsOwner = true
	return comment, nil
}

// ListComments returns a product's comments, flagging the viewer's own rows.
// Anonymous viewers get an empty viewerID and no ownership flags.
func (s *SocialService) ListComments(viewerID, productID string, skip, limit int) ([]models.Comment, error) {
	comments, err := s.store.ListComments(productID, skip, limit)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].IsOwner = viewerID != "" && comments[i].UserID == viewerID
	}
	return comments, nil
}

// ProductRating aggregates rated comments into a count and average.
func (s *SocialService) ProductRating(productID string) (int, float64, error) {
	return s.store.CommentRating(productID)
}
