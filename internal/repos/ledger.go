package repos

import "partsync/internal/models"

// AppendChange writes one audit row. Callers run it inside the same
// transaction as the mutation it records.
func (s *Store) AppendChange(q DBTX, table, recordID, action, userID string) error {
	_, err := q.Exec(`INSERT INTO change_log (table_name, record_id, action, timestamp, user_id) VALUES (?, ?, ?, ?, ?)`,
		table, recordID, action, s.clock.NowMillis(), userID)
	return err
}

// RecentChanges returns the newest ledger entries, optionally filtered by
// table, for the diagnostics endpoint.
func (s *Store) RecentChanges(table string, limit int) ([]models.ChangeEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, table_name, record_id, action, timestamp, user_id FROM change_log`
	args := []any{}
	if table != "" {
		query += ` WHERE table_name = ?`
		args = append(args, table)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ChangeEntry{}
	for rows.Next() {
		var e models.ChangeEntry
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &e.Action, &e.Timestamp, &e.UserID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
