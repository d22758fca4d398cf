package models

// ChangeEntry is one append-only audit record. The ledger tracks every
// mutation for diagnostics; pull deltas are computed from entity timestamps,
// not by replaying these rows.
type ChangeEntry struct {
	ID        int64  `json:"id"`
	TableName string `json:"table_name"`
	RecordID  string `json:"record_id"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// PullRequest asks for every change after the watermark. A zero or absent
// watermark means full sync; an empty table list means all catalog tables.
type PullRequest struct {
	LastPulledAt int64    `json:"last_pulled_at"`
	Tables       []string `json:"tables"`
}

// TableChanges buckets a table's delta. Created and Updated carry full
// records; Deleted carries only ids.
type TableChanges struct {
	Created []any    `json:"created"`
	Updated []any    `json:"updated"`
	Deleted []string `json:"deleted"`
}

type PullResponse struct {
	Changes   map[string]*TableChanges `json:"changes"`
	Timestamp int64                    `json:"timestamp"`
}

// PushTableChanges is the client-side mirror of TableChanges; records arrive
// as loose maps because the client schema is not trusted.
type PushTableChanges struct {
	Created []map[string]any `json:"created"`
	Updated []map[string]any `json:"updated"`
	Deleted []string         `json:"deleted"`
}

type PushRequest struct {
	Changes      map[string]PushTableChanges `json:"changes"`
	LastPulledAt int64                       `json:"last_pulled_at"`
}
