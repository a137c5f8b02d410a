// Package conversations persists the per-user chat log: conversations and
// their append-only, time-ordered messages.
package conversations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             string    `json:"id"`
	UserID         int       `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// SQLStore is the PostgreSQL-backed conversation store.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// GetOrCreate returns the conversation when (id, owner) match, touching its
// updated_at. A missing id, or one owned by someone else, silently yields a
// fresh conversation instead of an error.
func (s *SQLStore) GetOrCreate(ctx context.Context, userID int, conversationID string) (Conversation, error) {
	if conversationID != "" {
		row := s.db.QueryRowContext(ctx, `
			UPDATE conversations SET updated_at = now()
			WHERE id = $1 AND user_id = $2
			RETURNING id, user_id, created_at, updated_at
		`, conversationID, userID)

		var c Conversation
		err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, err
		}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO conversations (id, user_id)
		VALUES ($1, $2)
		RETURNING id, user_id, created_at, updated_at
	`, uuid.NewString(), userID)

	var c Conversation
	err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// AppendMessage stores one message. Messages are never mutated afterwards.
func (s *SQLStore) AppendMessage(ctx context.Context, conversationID string, userID int, role, content string) (Message, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, user_id, conversation_id, role, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, conversation_id, role, content, created_at
	`, uuid.NewString(), userID, conversationID, role, content)

	var m Message
	err := row.Scan(&m.ID, &m.UserID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt)
	return m, err
}

// History returns the conversation's messages ascending by creation time.
func (s *SQLStore) History(ctx context.Context, conversationID string, userID int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`, conversationID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
