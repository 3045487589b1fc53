package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"linguachat/internal/dispatch"
	"linguachat/internal/domain"
	"linguachat/internal/invite"
	"linguachat/internal/middleware"
)

// MessageDispatcher runs the send pipeline for one composed message.
type MessageDispatcher interface {
	Send(ctx context.Context, req dispatch.SendRequest) (*domain.Message, error)
}

// InviteService creates chats and processes invitation acceptance.
type InviteService interface {
	CreateChat(ctx context.Context, req invite.CreateChatRequest) (*invite.CreateChatResult, error)
	Accept(ctx context.Context, chatID, userID string) (*domain.Chat, error)
}

// UsageReader exposes the current period's counters.
type UsageReader interface {
	Usage(ctx context.Context, userID string) (map[domain.Resource]int64, error)
}

// App bundles the handler dependencies.
type App struct {
	Dispatcher MessageDispatcher
	Invites    InviteService
	Chats      domain.ChatRepository
	Messages   domain.MessageRepository
	Users      domain.UserRepository
	Usage      UsageReader
	Logger     zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// domainError maps pipeline errors onto the HTTP surface. Quota denials are
// actionable for the user; everything unexpected stays a 500.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusForbidden, "quota_exceeded", "quota exceeded, upgrade your plan to send more")
	case errors.Is(err, domain.ErrStorageExceeded):
		a.error(w, http.StatusForbidden, "storage_exceeded", "file storage quota exceeded")
	case errors.Is(err, domain.ErrFileTooLarge):
		a.error(w, http.StatusRequestEntityTooLarge, "file_too_large", "files may not exceed 10 MiB")
	case errors.Is(err, domain.ErrEmptyMessage):
		a.error(w, http.StatusBadRequest, "empty_message", "provide text, a file, or an audio recording")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrChatFull):
		a.error(w, http.StatusConflict, "chat_full", "chat is already at capacity")
	case errors.Is(err, domain.ErrInviteNotAllowed):
		a.error(w, http.StatusConflict, "invite_not_allowed", "this chat does not accept invitations")
	case errors.Is(err, domain.ErrInvalidChatType):
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported chat type")
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
