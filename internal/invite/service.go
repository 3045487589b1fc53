// Package invite handles chat creation, invitation-link issuance, and the
// acceptance flow that grows a chat's participant set.
package invite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"linguachat/internal/domain"
)

// QuotaCharger is the slice of the quota ledger this flow needs: group chat
// creation is metered.
type QuotaCharger interface {
	CheckAndIncrement(ctx context.Context, userID string, resource domain.Resource) (bool, error)
}

// Service creates chats and processes invitation acceptance.
type Service struct {
	chats   domain.ChatRepository
	users   domain.UserRepository
	invites domain.InvitationRepository
	ledger  QuotaCharger
	baseURL string
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(chats domain.ChatRepository, users domain.UserRepository, invites domain.InvitationRepository, ledger QuotaCharger, baseURL string, logger zerolog.Logger) *Service {
	return &Service{
		chats:   chats,
		users:   users,
		invites: invites,
		ledger:  ledger,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// CreateChatRequest describes a chat to create on behalf of CreatorID.
type CreateChatRequest struct {
	CreatorID       string
	Type            domain.ChatType
	Name            string
	RecipientEmails []string
}

// CreateChatResult is the created chat plus the shareable link embedding the
// chat id as the invitation token.
type CreateChatResult struct {
	Chat        *domain.Chat
	InviteLink  string
	Invitations []domain.Invitation
}

// CreateChat creates a chat with the creator as sole initial participant. A
// private chat with exactly one recipient resolved by email unions that
// recipient in directly; every other recipient gets an invitation record.
func (s *Service) CreateChat(ctx context.Context, req CreateChatRequest) (*CreateChatResult, error) {
	if req.CreatorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !domain.ValidChatType(req.Type) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidChatType, req.Type)
	}

	switch req.Type {
	case domain.ChatAI:
		// AI chats are a single human plus the assistant; nobody can be
		// invited in.
		req.RecipientEmails = nil
	case domain.ChatPrivate:
		if len(req.RecipientEmails) > 1 {
			return nil, fmt.Errorf("private chat accepts at most one recipient: %w", domain.ErrChatFull)
		}
	case domain.ChatGroup:
		allowed, err := s.ledger.CheckAndIncrement(ctx, req.CreatorID, domain.ResourceGroupChats)
		if err != nil {
			return nil, fmt.Errorf("invite: group chat quota check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("group chats: %w", domain.ErrQuotaExceeded)
		}
	}

	chat := &domain.Chat{
		ID:           uuid.NewString(),
		Type:         req.Type,
		Name:         req.Name,
		Participants: []string{req.CreatorID},
		CreatedBy:    req.CreatorID,
	}

	var pending []string
	for _, email := range req.RecipientEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		if req.Type == domain.ChatPrivate {
			recipient, err := s.users.GetByEmail(ctx, email)
			if err == nil {
				chat.Participants = append(chat.Participants, recipient.ID)
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("invite: resolve recipient: %w", err)
			}
		}
		pending = append(pending, email)
	}

	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("invite: create chat: %w", err)
	}

	var invitations []domain.Invitation
	for _, email := range pending {
		inv := domain.Invitation{
			ID:     uuid.NewString(),
			ChatID: chat.ID,
			Email:  email,
			SentAt: s.now(),
		}
		if err := s.invites.Create(ctx, &inv); err != nil {
			// The link still works; the record is intent, not capability.
			s.logger.Warn().Err(err).Str("chat_id", chat.ID).Msg("invitation record not persisted")
			continue
		}
		invitations = append(invitations, inv)
	}

	return &CreateChatResult{
		Chat:        chat,
		InviteLink:  s.baseURL + "/invite/" + chat.ID,
		Invitations: invitations,
	}, nil
}

// Accept adds the authenticated user to the chat named by the invitation
// link. Re-accepting while already a participant is a no-op; AI chats and
// full private chats reject acceptance.
func (s *Service) Accept(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Type == domain.ChatAI {
		return nil, domain.ErrInviteNotAllowed
	}
	if chat.HasParticipant(userID) {
		return chat, nil
	}
	if chat.Type == domain.ChatPrivate && len(chat.Participants) >= domain.PrivateChatCapacity {
		return nil, domain.ErrChatFull
	}
	if chat.Type == domain.ChatGroup && len(chat.Participants) >= s.memberCap(ctx, chat.CreatedBy) {
		return nil, fmt.Errorf("group member limit: %w", domain.ErrChatFull)
	}
	if err := s.chats.AddParticipant(ctx, chat.ID, userID); err != nil {
		return nil, fmt.Errorf("invite: add participant: %w", err)
	}
	// The repository may hand back live objects that AddParticipant already
	// mutated, so the local union has to re-check membership.
	if !chat.HasParticipant(userID) {
		chat.Participants = append(chat.Participants, userID)
	}
	return chat, nil
}

// memberCap is the group size allowed by the chat creator's plan. The free
// tier applies when the creator cannot be resolved.
func (s *Service) memberCap(ctx context.Context, creatorID string) int {
	profile, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return domain.FreePlan().MaxGroupMembers
	}
	return domain.PlanByName(profile.Plan).MaxGroupMembers
}
