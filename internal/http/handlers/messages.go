package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"linguachat/internal/dispatch"
	"linguachat/internal/domain"
	"linguachat/internal/middleware"
)

// multipartMemoryLimit bounds in-memory multipart parsing. Oversized files
// still reach the dispatcher so its absolute cap produces the documented
// error.
const multipartMemoryLimit = 16 * domain.MiB

type textMessageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	ID              string         `json:"id"`
	ChatID          string         `json:"chat_id"`
	SenderID        string         `json:"sender_id"`
	Type            string         `json:"type"`
	Content         domain.Content `json:"content"`
	OriginalContent string         `json:"original_content,omitempty"`
	FileURL         string         `json:"file_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:              m.ID,
		ChatID:          m.ChatID,
		SenderID:        m.SenderID,
		Type:            string(m.Type),
		Content:         m.Content,
		OriginalContent: m.OriginalContent,
		FileURL:         m.FileURL,
		CreatedAt:       m.CreatedAt,
	}
}

// MessagesSend accepts a composed message: JSON for text, multipart for text
// plus an optional "file" or "audio" part.
func (a *App) MessagesSend(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	chatID := chi.URLParam(r, "chat_id")
	chat, err := a.Chats.GetByID(r.Context(), chatID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if !chat.HasParticipant(userID) {
		a.error(w, http.StatusForbidden, "forbidden", "not a chat participant")
		return
	}

	req := dispatch.SendRequest{Chat: chat, SenderID: userID}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body textMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		req.Text = body.Text
	} else {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
			return
		}
		req.Text = r.FormValue("text")
		if file, header, err := r.FormFile("file"); err == nil {
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "unreadable file part")
				return
			}
			req.File = &dispatch.Upload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			}
		}
		if audio, _, err := r.FormFile("audio"); err == nil {
			data, err := io.ReadAll(audio)
			audio.Close()
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "unreadable audio part")
				return
			}
			req.Audio = data
		}
	}

	req.ParticipantLanguages = a.participantLanguages(r, chat, userID)

	msg, err := a.Dispatcher.Send(r.Context(), req)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toMessageResponse(msg))
}

// MessagesList returns the chat's messages in server-timestamp order.
func (a *App) MessagesList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	chat, err := a.Chats.GetByID(r.Context(), chi.URLParam(r, "chat_id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if !chat.HasParticipant(userID) {
		a.error(w, http.StatusForbidden, "forbidden", "not a chat participant")
		return
	}

	messages, err := a.Messages.ListByChat(r.Context(), chat)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]messageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, toMessageResponse(&messages[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// participantLanguages collects the preferred languages of everyone in the
// chat except the sender. Profiles without a preference contribute the
// request locale; the orchestrator canonicalizes and dedupes.
func (a *App) participantLanguages(r *http.Request, chat *domain.Chat, senderID string) []string {
	locale := middleware.LocaleFromContext(r.Context())
	var langs []string
	for _, participant := range chat.Participants {
		if participant == senderID {
			continue
		}
		profile, err := a.Users.GetByID(r.Context(), participant)
		if err != nil || profile.PreferredLang == "" {
			langs = append(langs, locale)
			continue
		}
		langs = append(langs, profile.PreferredLang)
	}
	return langs
}
