package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"linguachat/internal/domain"
	"linguachat/internal/invite"
)

type chatCreateRequest struct {
	Type            string   `json:"type"`
	Name            string   `json:"name"`
	RecipientEmails []string `json:"recipient_emails"`
}

type chatResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Name         string    `json:"name,omitempty"`
	Participants []string  `json:"participants"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func toChatResponse(c *domain.Chat) chatResponse {
	return chatResponse{
		ID:           c.ID,
		Type:         string(c.Type),
		Name:         c.Name,
		Participants: c.Participants,
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
	}
}

// ChatsCreate creates a chat and issues invitations for unresolved
// recipients.
func (a *App) ChatsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req chatCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	res, err := a.Invites.CreateChat(r.Context(), invite.CreateChatRequest{
		CreatorID:       userID,
		Type:            domain.ChatType(req.Type),
		Name:            req.Name,
		RecipientEmails: req.RecipientEmails,
	})
	if err != nil {
		a.domainError(w, err)
		return
	}

	invited := make([]string, 0, len(res.Invitations))
	for _, inv := range res.Invitations {
		invited = append(invited, inv.Email)
	}
	a.json(w, http.StatusCreated, map[string]any{
		"chat":        toChatResponse(res.Chat),
		"invite_link": res.InviteLink,
		"invited":     invited,
	})
}

// ChatsGet fetches one chat for a participant.
func (a *App) ChatsGet(w http.ResponseWriter, r *http.Request) {
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
	a.json(w, http.StatusOK, toChatResponse(chat))
}
