package handlers

import (
	"net/http"
	"strings"
)

// UsersSearch resolves a recipient by exact email, used by the chat creation
// flow to decide between direct add and invitation.
func (a *App) UsersSearch(w http.ResponseWriter, r *http.Request) {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email is required")
		return
	}
	profile, err := a.Users.GetByEmail(r.Context(), email)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":             profile.ID,
		"username":       profile.Username,
		"email":          profile.Email,
		"preferred_lang": profile.PreferredLang,
		"image":          profile.Image,
	})
}
