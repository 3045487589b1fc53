package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"linguachat/internal/domain"
)

// InvitationRepositoryPG implements domain.InvitationRepository backed by
// PostgreSQL.
type InvitationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository creates a new InvitationRepositoryPG.
func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepositoryPG {
	return &InvitationRepositoryPG{pool: pool}
}

// Create persists an invitation intent record.
func (r *InvitationRepositoryPG) Create(ctx context.Context, inv *domain.Invitation) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO invitations (id, chat_id, email, sent_at)
VALUES ($1, $2, $3, $4);
`, inv.ID, inv.ChatID, inv.Email, inv.SentAt)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

// ListByChat returns all invitations issued for a chat.
func (r *InvitationRepositoryPG) ListByChat(ctx context.Context, chatID string) ([]domain.Invitation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, chat_id, email, sent_at
FROM invitations
WHERE chat_id = $1
ORDER BY sent_at ASC;
`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.ID, &inv.ChatID, &inv.Email, &inv.SentAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invitations, nil
}
