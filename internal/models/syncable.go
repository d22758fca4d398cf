package models

// Syncable carries the common fields of every entity that participates in
// pull/push synchronization. Timestamps are milliseconds since the Unix
// epoch; DeletedAt doubles as the tombstone marker, so rows are never hard
// deleted while clients may still reference them.
type Syncable struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// SyncMeta exposes the fields the pull classifier needs.
func (s Syncable) SyncMeta() (id string, createdAt, updatedAt int64, deleted bool) {
	return s.ID, s.CreatedAt, s.UpdatedAt, s.DeletedAt != nil
}

func (s Syncable) IsDeleted() bool {
	return s.DeletedAt != nil
}

// SyncRecord is implemented by every entity embedding Syncable.
type SyncRecord interface {
	SyncMeta() (id string, createdAt, updatedAt int64, deleted bool)
}
