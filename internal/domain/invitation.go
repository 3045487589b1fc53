package domain

import "time"

// Invitation records the intent to invite an email address to a chat. The
// capability itself is the chat id embedded in the shareable link; records
// are never marked consumed, so a link stays usable until the chat is full.
type Invitation struct {
	ID     string
	ChatID string
	Email  string
	SentAt time.Time
}
