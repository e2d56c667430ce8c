package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type Message struct {
	ID        int64     `json:"id"`
	ThreatID  int64     `json:"threat_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// MessagesStore is append-only; the thread has no edit or delete.
type MessagesStore interface {
	AppendMessage(ctx context.Context, m *Message) (int64, error)
	ListMessagesForThreat(ctx context.Context, threatID int64) ([]Message, error)
}

type messagesStore struct {
	db *sql.DB
}

func NewMessagesStore(db *sql.DB) MessagesStore {
	return &messagesStore{db: db}
}

func (s *messagesStore) AppendMessage(ctx context.Context, m *Message) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages(threat_id, sender, message, created_at)
		VALUES(?,?,?,?)`,
		m.ThreatID, strings.TrimSpace(m.Sender), strings.TrimSpace(m.Message), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	m.ID = id
	m.CreatedAt = now
	return id, nil
}

// ListMessagesForThreat returns oldest first; the thread reads as a
// conversation.
func (s *messagesStore) ListMessagesForThreat(ctx context.Context, threatID int64) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, threat_id, sender, message, created_at
		FROM messages WHERE threat_id=? ORDER BY created_at ASC, id ASC`, threatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ThreatID, &m.Sender, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
