package domain

import "context"

// ChatRepository persists chats and their participant sets.
type ChatRepository interface {
	Create(ctx context.Context, chat *Chat) error
	GetByID(ctx context.Context, id string) (*Chat, error)
	// AddParticipant unions the user into the chat's participant set.
	// Adding an existing participant is a no-op.
	AddParticipant(ctx context.Context, chatID, userID string) error
}

// MessageRepository appends to and reads a chat's ordered message sequence.
type MessageRepository interface {
	// Append persists the message with a server-assigned timestamp and
	// returns the stored record. One call, one appended message.
	Append(ctx context.Context, msg *Message) (*Message, error)
	ListByChat(ctx context.Context, chat *Chat) ([]Message, error)
}

// UserRepository reads profiles owned by the identity subsystem.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*UserProfile, error)
}

// InvitationRepository persists invitation intent records.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	ListByChat(ctx context.Context, chatID string) ([]Invitation, error)
}
