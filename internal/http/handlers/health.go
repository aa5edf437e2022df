package handlers

import (
	"net/http"
)

// Health reports liveness and the active provider.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": a.Gen.Provider.Name(),
	})
}
