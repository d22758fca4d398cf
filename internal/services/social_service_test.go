package services

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"partsync/internal/models"
	"partsync/internal/realtime"
)

func newTestSocial(t *testing.T) (*SocialService, *SyncService, func(email string) string, func(name string) string) {
	t.Helper()
	store := newTestStore(t)
	hub := realtime.NewHub(zerolog.Nop())
	social := NewSocialService(store, hub, zerolog.Nop())
	sync := NewSyncService(store, zerolog.Nop())
	mkUser := func(email string) string { return seedUser(t, store, email).ID }
	mkProduct := func(name string) string { return seedProduct(t, store, name, 10).ID }
	return social, sync, mkUser, mkProduct
}

func TestToggleFavoriteRestoresTombstone(t *testing.T) {
	social, _, mkUser, mkProduct := newTestSocial(t)
	user := mkUser("fav@example.com")
	product := mkProduct("Filter")

	on, err := social.ToggleFavorite(user, product)
	if err != nil || !on {
		t.Fatalf("first toggle: favorited=%v err=%v", on, err)
	}
	off, err := social.ToggleFavorite(user, product)
	if err != nil || off {
		t.Fatalf("second toggle: favorited=%v err=%v", off, err)
	}
	// Third toggle restores the tombstoned row; the unique user/product key
	// would reject a fresh insert.
	on, err = social.ToggleFavorite(user, product)
	if err != nil || !on {
		t.Fatalf("third toggle: favorited=%v err=%v", on, err)
	}

	favorited, err := social.IsFavorite(user, product)
	if err != nil || !favorited {
		t.Fatalf("expected favorited, got %v err=%v", favorited, err)
	}
}

func TestToggleVisibleThroughSyncPull(t *testing.T) {
	social, sync, mkUser, mkProduct := newTestSocial(t)
	user := mkUser("syncfav@example.com")
	product := mkProduct("Battery")

	if _, err := social.ToggleFavorite(user, product); err != nil {
		t.Fatal(err)
	}
	resp, err := sync.Pull(user, models.PullRequest{Tables: []string{models.TableFavorites}})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(resp.Changes["favorites"].Created); got != 1 {
		t.Fatalf("expected toggled favorite in pull, got %d created", got)
	}
}

func TestCommentRatingValidation(t *testing.T) {
	social, _, mkUser, mkProduct := newTestSocial(t)
	user := mkUser("rater@example.com")
	product := mkProduct("Plug")

	bad := 6
	_, err := social.AddComment(user, product, "too good", &bad)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for rating 6, got %v", err)
	}

	good := 5
	if _, err := social.AddComment(user, product, "great part", &good); err != nil {
		t.Fatal(err)
	}
	if _, err := social.AddComment(user, product, "unrated note", nil); err != nil {
		t.Fatal(err)
	}

	count, avg, err := social.ProductRating(product)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 || avg != 5 {
		t.Fatalf("expected 1 rated comment avg 5, got count=%d avg=%v", count, avg)
	}
}

func TestListCommentsFlagsViewerOwnership(t *testing.T) {
	social, _, mkUser, mkProduct := newTestSocial(t)
	author := mkUser("author@example.com")
	reader := mkUser("reader@example.com")
	product := mkProduct("Mirror")

	if _, err := social.AddComment(author, product, "fits well", nil); err != nil {
		t.Fatal(err)
	}

	asAuthor, err := social.ListComments(author, product, 0, 10)
	if err != nil || len(asAuthor) != 1 || !asAuthor[0].IsOwner {
		t.Fatalf("author should own their comment: %v err=%v", asAuthor, err)
	}
	asReader, err := social.ListComments(reader, product, 0, 10)
	if err != nil || len(asReader) != 1 || asReader[0].IsOwner {
		t.Fatalf("reader must not own the comment: %v err=%v", asReader, err)
	}
	asAnon, err := social.ListComments("", product, 0, 10)
	if err != nil || len(asAnon) != 1 || asAnon[0].IsOwner {
		t.Fatalf("anonymous must not own the comment: %v err=%v", asAnon, err)
	}
}
