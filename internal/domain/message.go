package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType enumerates message payload kinds. Exactly one applies per
// message.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
	MessageAudio MessageType = "audio"
)

// Content is the payload of a persisted message: a single string for private
// and ai chats, a per-language map for group chats. Which form applies is
// decided by the chat's type at write time, never by inspecting the stored
// value's shape.
type Content interface {
	isContent()
}

// TextContent holds a single-language message body. Encodes as a JSON string.
type TextContent string

func (TextContent) isContent() {}

// TranslatedContent maps language codes to translated message bodies.
// Encodes as a JSON object.
type TranslatedContent map[string]string

func (TranslatedContent) isContent() {}

// DecodeContent unmarshals a stored content payload. The variant is chosen
// by the recorded chat and message types: only text and audio messages in
// group chats carry per-language maps, everything else is a single string.
func DecodeContent(chatType ChatType, msgType MessageType, raw []byte) (Content, error) {
	if chatType == ChatGroup && (msgType == MessageText || msgType == MessageAudio) {
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decode translated content: %w", err)
		}
		return TranslatedContent(m), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode text content: %w", err)
	}
	return TextContent(s), nil
}

// Message is a single entry in a chat's ordered sequence. Immutable once
// appended; CreatedAt is assigned by the store, not the client.
type Message struct {
	ID              string
	ChatID          string
	SenderID        string
	Type            MessageType
	Content         Content
	OriginalContent string
	FileURL         string
	CreatedAt       time.Time
}
