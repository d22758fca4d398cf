package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"partsync/internal/models"
	"partsync/internal/repos"
)

// SyncPolicy declares, per syncable table, whether clients may write to it.
// Server-wins is the rule: everything not marked client-writable silently
// drops client submissions on push. Adding a user-owned table means adding
// a row here, not touching the push control flow.
type SyncPolicy struct {
	ClientWritable bool
}

var syncPolicies = map[string]SyncPolicy{
	models.TableCarBrands:     {},
	models.TableCarModels:     {},
	models.TableProductBrands: {},
	models.TableCategories:    {},
	models.TableProducts:      {},
	models.TableFavorites:     {ClientWritable: true},
}

// SyncService reconciles disconnected client replicas against the server of
// record using a single millisecond watermark per client; no per-client
// state is kept server-side.
type SyncService struct {
	store *repos.Store
	log   zerolog.Logger
}

func NewSyncService(store *repos.Store, log zerolog.Logger) *SyncService {
	return &SyncService{store: store, log: log}
}

// Pull computes deltas since the client watermark. The response timestamp is
// captured before any query runs: a write landing mid-pull is then re-sent
// on the next pull rather than lost. Duplicates are acceptable, gaps are not.
func (s *SyncService) Pull(userID string, req models.PullRequest) (models.PullResponse, error) {
	tables := req.Tables
	if len(tables) == 0 {
		tables = models.CatalogTables
	}
	for _, table := range tables {
		if _, ok := syncPolicies[table]; !ok {
			return models.PullResponse{}, invalidf("unknown table %q", table)
		}
	}

	resp := models.PullResponse{
		Changes:   make(map[string]*models.TableChanges, len(tables)),
		Timestamp: s.store.NowMillis(),
	}
	since := req.LastPulledAt

	for _, table := range tables {
		var (
			tc  *models.TableChanges
			err error
		)
		switch table {
		case models.TableCarBrands:
			var rows []models.CarBrand
			rows, err = s.store.CarBrandsChangedSince(since)
			tc = classify(rows, since)
		case models.TableCarModels:
			var rows []models.CarModel
			rows, err = s.store.CarModelsChangedSince(since)
			tc = classify(rows, since)
		case models.TableProductBrands:
			var rows []models.ProductBrand
			rows, err = s.store.ProductBrandsChangedSince(since)
			tc = classify(rows, since)
		case models.TableCategories:
			var rows []models.Category
			rows, err = s.store.CategoriesChangedSince(since)
			tc = classify(rows, since)
		case models.TableProducts:
			var rows []models.Product
			rows, err = s.store.ProductsChangedSince(since)
			tc = classify(rows, since)
		case models.TableFavorites:
			if userID == "" {
				return models.PullResponse{}, ErrUnauthenticated
			}
			var rows []models.Favorite
			rows, err = s.store.FavoritesChangedSince(userID, since)
			tc = classify(rows, since)
		}
		if err != nil {
			return models.PullResponse{}, fmt.Errorf("pull %s: %w", table, err)
		}
		resp.Changes[table] = tc
	}
	return resp, nil
}

// classify buckets each changed row exactly once, deletions first: a row
// created and tombstoned inside one watermark window must reach the client
// only as a deletion.
func classify[T models.SyncRecord](rows []T, since int64) *models.TableChanges {
	tc := &models.TableChanges{Created: []any{}, Updated: []any{}, Deleted: []string{}}
	for _, r := range rows {
		id, createdAt, _, deleted := r.SyncMeta()
		switch {
		case deleted:
			tc.Deleted = append(tc.Deleted, id)
		case createdAt > since:
			tc.Created = append(tc.Created, r)
		default:
			tc.Updated = append(tc.Updated, r)
		}
	}
	return tc
}

// Push applies client-submitted changes under server-wins. Unknown tables
// are a structural error; everything else is record-isolated: a malformed
// record is logged and skipped, and the accepted writes commit together.
// The envelope always succeeds once it is structurally valid.
func (s *SyncService) Push(userID string, req models.PushRequest) error {
	for table := range req.Changes {
		if _, ok := syncPolicies[table]; !ok {
			return invalidf("unknown table %q", table)
		}
	}

	return s.store.WithTx(func(tx *sql.Tx) error {
		for table, changes := range req.Changes {
			if !syncPolicies[table].ClientWritable {
				// Server-owned: drop silently, the server copy is authoritative.
				continue
			}
			for _, record := range changes.Created {
				if err := s.applyCreate(tx, table, userID, record); err != nil {
					s.log.Warn().Err(err).Str("table", table).Msg("sync push create skipped")
				}
			}
			// Updated records are dropped even for client-writable tables;
			// clients re-create or delete, they never patch.
			for _, id := range changes.Deleted {
				if err := s.applyDelete(tx, table, userID, id); err != nil {
					s.log.Warn().Err(err).Str("table", table).Str("id", id).Msg("sync push delete skipped")
				}
			}
		}
		return nil
	})
}

func (s *SyncService) applyCreate(tx *sql.Tx, table, userID string, record map[string]any) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	switch table {
	case models.TableFavorites:
		productID, _ := record["product_id"].(string)
		if productID == "" {
			return invalidf("favorite create missing product_id")
		}
		if existing, err := s.store.GetFavorite(tx, userID, productID); err == nil {
			if existing.IsDeleted() {
				return s.store.SetFavoriteDeleted(tx, existing.ID, false)
			}
			return nil // already present, idempotent
		} else if !errors.Is(err, repos.ErrNotFound) {
			return err
		}
		fav := models.Favorite{UserID: userID, ProductID: productID}
		if id, _ := record["id"].(string); id != "" {
			fav.ID = id
		}
		if err := s.store.InsertFavorite(tx, &fav); err != nil {
			return err
		}
		return s.store.AppendChange(tx, table, fav.ID, models.ActionCreated, userID)
	}
	return invalidf("table %q does not accept creates", table)
}

func (s *SyncService) applyDelete(tx *sql.Tx, table, userID, id string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	switch table {
	case models.TableFavorites:
		fav, err := s.store.GetFavoriteByID(tx, id)
		if errors.Is(err, repos.ErrNotFound) {
			return nil // never existed here, nothing to do
		}
		if err != nil {
			return err
		}
		if fav.UserID != userID {
			return invalidf("favorite %s not owned by user", id)
		}
		if fav.IsDeleted() {
			return nil // tombstoning twice is a no-op
		}
		if err := s.store.SetFavoriteDeleted(tx, id, true); err != nil {
			return err
		}
		return s.store.AppendChange(tx, table, id, models.ActionDeleted, userID)
	}
	return invalidf("table %q does not accept deletes", table)
}
