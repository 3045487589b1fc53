package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"linguachat/internal/domain"
)

// MessageRepositoryPG implements domain.MessageRepository backed by
// PostgreSQL.
type MessageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepositoryPG.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepositoryPG {
	return &MessageRepositoryPG{pool: pool}
}

// Append inserts the message with a server-assigned timestamp and returns
// the stored record. Ordering within a chat follows created_at, not call
// arrival.
func (r *MessageRepositoryPG) Append(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	content, err := json.Marshal(msg.Content)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	stored := *msg
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO messages (id, chat_id, sender_id, type, content, original_content, file_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
RETURNING created_at;
`, stored.ID, stored.ChatID, stored.SenderID, string(stored.Type), content, stored.OriginalContent, stored.FileURL)
	if err := row.Scan(&stored.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &stored, nil
}

// ListByChat returns the chat's messages in timestamp order. Content is
// decoded with the chat and message types as the variant tag.
func (r *MessageRepositoryPG) ListByChat(ctx context.Context, chat *domain.Chat) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, chat_id, sender_id, type, content, original_content, file_url, created_at
FROM messages
WHERE chat_id = $1
ORDER BY created_at ASC;
`, chat.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var msgType string
		var raw []byte
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &msgType, &raw, &m.OriginalContent, &m.FileURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Type = domain.MessageType(msgType)
		m.Content, err = domain.DecodeContent(chat.Type, m.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", m.ID, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
