package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrStorageExceeded   = errors.New("storage quota exceeded")
	ErrFileTooLarge      = errors.New("file exceeds maximum size")
	ErrEmptyMessage      = errors.New("message has no content")
	ErrChatFull          = errors.New("chat is at capacity")
	ErrInviteNotAllowed  = errors.New("chat does not accept invitations")
	ErrInvalidChatType   = errors.New("invalid chat type")
	ErrInvalidTransition = errors.New("invalid state transition")
)
