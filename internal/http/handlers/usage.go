package handlers

import "net/http"

// MeUsage returns the caller's counters for the active period.
func (a *App) MeUsage(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	usage, err := a.Usage.Usage(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"usage": usage})
}
