package handlers

import "net/http"

// Health is the liveness probe. It deliberately touches no dependency: a
// saturated database must not make the instance look dead.
func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
