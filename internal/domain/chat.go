package domain

import "time"

// ChatType enumerates conversation kinds.
type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
	ChatAI      ChatType = "ai"
)

// PrivateChatCapacity is the hard participant ceiling of a private chat.
const PrivateChatCapacity = 2

// Chat is a conversation between participants. Participants only ever grow:
// either at creation or through invitation acceptance.
type Chat struct {
	ID           string
	Type         ChatType
	Name         string
	Participants []string
	CreatedBy    string
	CreatedAt    time.Time
}

// HasParticipant reports whether the user is already a member.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ValidChatType reports whether t is one of the supported chat kinds.
func ValidChatType(t ChatType) bool {
	switch t {
	case ChatPrivate, ChatGroup, ChatAI:
		return true
	}
	return false
}
