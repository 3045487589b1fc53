package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linguachat/internal/domain"
)

// ChatRepositoryPG implements domain.ChatRepository backed by PostgreSQL.
type ChatRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepositoryPG.
func NewChatRepository(pool *pgxpool.Pool) *ChatRepositoryPG {
	return &ChatRepositoryPG{pool: pool}
}

// Create persists the chat and its initial participant set in one
// transaction.
func (r *ChatRepositoryPG) Create(ctx context.Context, chat *domain.Chat) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO chats (id, type, name, created_by, created_at)
VALUES ($1, $2, $3, $4, now());
`, chat.ID, string(chat.Type), chat.Name, chat.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}

	for _, userID := range chat.Participants {
		_, err = tx.Exec(ctx, `
INSERT INTO chat_participants (chat_id, user_id, joined_at)
VALUES ($1, $2, now())
ON CONFLICT (chat_id, user_id) DO NOTHING;
`, chat.ID, userID)
		if err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID fetches a chat with its participant set.
func (r *ChatRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	row := r.pool.QueryRow(ctx, `
SELECT c.id, c.type, c.name, c.created_by, c.created_at,
       COALESCE(array_agg(p.user_id ORDER BY p.joined_at) FILTER (WHERE p.user_id IS NOT NULL), '{}')
FROM chats c
LEFT JOIN chat_participants p ON p.chat_id = c.id
WHERE c.id = $1
GROUP BY c.id;
`, id)

	var c domain.Chat
	var chatType string
	if err := row.Scan(&c.ID, &chatType, &c.Name, &c.CreatedBy, &c.CreatedAt, &c.Participants); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Type = domain.ChatType(chatType)
	return &c, nil
}

// AddParticipant unions the user into the participant set. ON CONFLICT DO
// NOTHING makes re-acceptance idempotent at the store.
func (r *ChatRepositoryPG) AddParticipant(ctx context.Context, chatID, userID string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO chat_participants (chat_id, user_id, joined_at)
VALUES ($1, $2, now())
ON CONFLICT (chat_id, user_id) DO NOTHING;
`, chatID, userID)
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}
