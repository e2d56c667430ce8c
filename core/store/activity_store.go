package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type ActivityEntry struct {
	ID        int64     `json:"id"`
	ThreatID  int64     `json:"threat_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityStore is append-only; entries are never updated or deleted.
type ActivityStore interface {
	AppendActivity(ctx context.Context, e *ActivityEntry) (int64, error)
	ListActivityForThreat(ctx context.Context, threatID int64) ([]ActivityEntry, error)
}

type activityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) ActivityStore {
	return &activityStore{db: db}
}

func (s *activityStore) AppendActivity(ctx context.Context, e *ActivityEntry) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log(threat_id, action, details, username, created_at)
		VALUES(?,?,?,?,?)`,
		e.ThreatID, strings.TrimSpace(e.Action), strings.TrimSpace(e.Details), strings.TrimSpace(e.Username), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	e.CreatedAt = now
	return id, nil
}

// ListActivityForThreat returns the newest entry first: the log reads as a
// history feed, unlike the message thread.
func (s *activityStore) ListActivityForThreat(ctx context.Context, threatID int64) ([]ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, threat_id, action, details, username, created_at
		FROM activity_log WHERE threat_id=? ORDER BY created_at DESC, id DESC`, threatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []ActivityEntry{}
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.ThreatID, &e.Action, &e.Details, &e.Username, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
