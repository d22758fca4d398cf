package services

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"partsync/internal/models"
	"partsync/internal/repos"
)

func seedBrand(t *testing.T, store *repos.Store, name string) models.CarBrand {
	t.Helper()
	b := models.CarBrand{Name: name}
	err := store.WithTx(func(tx *sql.Tx) error {
		return store.InsertCarBrand(tx, &b)
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func seedUser(t *testing.T, store *repos.Store, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Name: "Test User"}
	err := store.WithTx(func(tx *sql.Tx) error {
		return store.InsertUser(tx, &u)
	})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func seedProduct(t *testing.T, store *repos.Store, name string, price float64) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: price, SKU: name}
	err := store.WithTx(func(tx *sql.Tx) error {
		return store.InsertProduct(tx, &p)
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPullFullSyncReportsEverythingCreated(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())

	seedBrand(t, store, "Toyota")
	seedBrand(t, store, "Mazda")
	seedProduct(t, store, "Oil Filter", 45.99)

	resp, err := svc.Pull("", models.PullRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Changes) != len(models.CatalogTables) {
		t.Fatalf("expected %d tables, got %d", len(models.CatalogTables), len(resp.Changes))
	}
	if got := len(resp.Changes[models.TableCarBrands].Created); got != 2 {
		t.Fatalf("expected 2 created car brands, got %d", got)
	}
	if got := len(resp.Changes[models.TableProducts].Created); got != 1 {
		t.Fatalf("expected 1 created product, got %d", got)
	}
	if resp.Timestamp <= 0 {
		t.Fatal("expected a positive server timestamp")
	}
}

func TestPullRepeatWithWatermarkIsEmpty(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())
	seedBrand(t, store, "Toyota")

	first, err := svc.Pull("", models.PullRequest{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Pull("", models.PullRequest{LastPulledAt: first.Timestamp})
	if err != nil {
		t.Fatal(err)
	}
	for table, tc := range second.Changes {
		if len(tc.Created)+len(tc.Updated)+len(tc.Deleted) != 0 {
			t.Fatalf("expected empty delta for %s", table)
		}
	}
	if second.Timestamp < first.Timestamp {
		t.Fatal("server timestamp went backwards")
	}
}

func TestPullClassifiesDeletionFirst(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())

	// Created and tombstoned inside one watermark window: the client must
	// see only the deletion.
	b := seedBrand(t, store, "Ephemeral")
	err := store.WithTx(func(tx *sql.Tx) error {
		return store.SoftDeleteCarBrand(tx, b.ID)
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Pull("", models.PullRequest{Tables: []string{models.TableCarBrands}})
	if err != nil {
		t.Fatal(err)
	}
	tc := resp.Changes[models.TableCarBrands]
	if len(tc.Created) != 0 || len(tc.Updated) != 0 {
		t.Fatalf("expected only a deletion, got created=%d updated=%d", len(tc.Created), len(tc.Updated))
	}
	if len(tc.Deleted) != 1 || tc.Deleted[0] != b.ID {
		t.Fatalf("expected deletion of %s, got %v", b.ID, tc.Deleted)
	}
}

func TestPullUpdatedAfterWatermark(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())

	p := seedProduct(t, store, "Spark Plug", 89.99)
	first, err := svc.Pull("", models.PullRequest{Tables: []string{models.TableProducts}})
	if err != nil {
		t.Fatal(err)
	}

	err = store.WithTx(func(tx *sql.Tx) error {
		return store.SetProductPrice(tx, p.ID, 79.99)
	})
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Pull("", models.PullRequest{Tables: []string{models.TableProducts}, LastPulledAt: first.Timestamp})
	if err != nil {
		t.Fatal(err)
	}
	tc := second.Changes[models.TableProducts]
	if len(tc.Updated) != 1 {
		t.Fatalf("expected 1 updated product, got %d", len(tc.Updated))
	}
	updated, ok := tc.Updated[0].(models.Product)
	if !ok {
		t.Fatalf("expected a product record, got %T", tc.Updated[0])
	}
	if updated.Price != 79.99 {
		t.Fatalf("expected updated price, got %v", updated.Price)
	}
}

func TestPullRejectsUnknownTable(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())

	_, err := svc.Pull("", models.PullRequest{Tables: []string{"users"}})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPullFavoritesRequiresIdentity(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())

	if _, err := svc.Pull("", models.PullRequest{Tables: []string{models.TableFavorites}}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPushFavoriteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())
	user := seedUser(t, store, "a@example.com")
	product := seedProduct(t, store, "Battery", 185)

	err := svc.Push(user.ID, models.PushRequest{Changes: map[string]models.PushTableChanges{
		models.TableFavorites: {Created: []map[string]any{{"product_id": product.ID}}},
	}})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Pull(user.ID, models.PullRequest{Tables: []string{models.TableFavorites}})
	if err != nil {
		t.Fatal(err)
	}
	tc := resp.Changes[models.TableFavorites]
	if len(tc.Created) != 1 {
		t.Fatalf("expected 1 created favorite, got %d", len(tc.Created))
	}
	fav := tc.Created[0].(models.Favorite)
	if fav.UserID != user.ID || fav.ProductID != product.ID {
		t.Fatalf("unexpected favorite %+v", fav)
	}
}

func TestPushFavoriteDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())
	user := seedUser(t, store, "b@example.com")
	product := seedProduct(t, store, "Mirror", 145)

	if err := svc.Push(user.ID, models.PushRequest{Changes: map[string]models.PushTableChanges{
		models.TableFavorites: {Created: []map[string]any{{"product_id": product.ID}}},
	}}); err != nil {
		t.Fatal(err)
	}
	favs, err := store.ListFavorites(user.ID)
	if err != nil || len(favs) != 1 {
		t.Fatalf("expected 1 favorite, got %d (%v)", len(favs), err)
	}

	del := models.PushRequest{Changes: map[string]models.PushTableChanges{
		models.TableFavorites: {Deleted: []string{favs[0].ID, "never-existed"}},
	}}
	// Tombstoning twice and deleting an unknown id both succeed quietly.
	if err := svc.Push(user.ID, del); err != nil {
		t.Fatal(err)
	}
	if err := svc.Push(user.ID, del); err != nil {
		t.Fatal(err)
	}

	favs, err = store.ListFavorites(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 0 {
		t.Fatalf("expected favorite gone, got %d", len(favs))
	}
}

func TestPushServerOwnedTablesAreDropped(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())
	user := seedUser(t, store, "c@example.com")

	err := svc.Push(user.ID, models.PushRequest{Changes: map[string]models.PushTableChanges{
		models.TableProducts: {Created: []map[string]any{{"name": "Bogus", "price": 1.0}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	products, err := store.ListAllProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 0 {
		t.Fatalf("server-owned table accepted a client write: %d products", len(products))
	}
}

func TestPushRejectsUnknownTable(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())

	err := svc.Push("", models.PushRequest{Changes: map[string]models.PushTableChanges{
		"sessions": {},
	}})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPushAnonymousFavoriteIsSkippedNotFatal(t *testing.T) {
	store := newTestStore(t)
	svc := NewSyncService(store, zerolog.Nop())
	product := seedProduct(t, store, "Clutch", 299.99)

	err := svc.Push("", models.PushRequest{Changes: map[string]models.PushTableChanges{
		models.TableFavorites: {Created: []map[string]any{{"product_id": product.ID}}},
	}})
	if err != nil {
		t.Fatalf("push envelope should succeed, got %v", err)
	}
}
