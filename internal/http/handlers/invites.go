package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"linguachat/internal/invite"
)

// InviteAccept walks the acceptance flow for the invited identity: loading
// until the caller is authenticated, accepting while the chat is validated
// and joined, then redirecting.
func (a *App) InviteAccept(w http.ResponseWriter, r *http.Request) {
	acceptance := invite.NewAcceptance()

	userID := a.currentUserID(r)
	chatID := chi.URLParam(r, "chat_id")
	if userID == "" || chatID == "" {
		_ = acceptance.To(invite.StateError)
		a.error(w, http.StatusUnauthorized, "unauthorized", "sign in to accept the invitation")
		return
	}
	_ = acceptance.To(invite.StateAccepting)

	chat, err := a.Invites.Accept(r.Context(), chatID, userID)
	if err != nil {
		_ = acceptance.To(invite.StateError)
		a.domainError(w, err)
		return
	}
	_ = acceptance.To(invite.StateRedirecting)

	a.json(w, http.StatusOK, map[string]any{
		"state": acceptance.State(),
		"chat":  toChatResponse(chat),
	})
}
