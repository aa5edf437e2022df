package handlers

import (
	"net/http"
)

type providerInfo struct {
	ID              string `json:"id"`
	HostedSubdomain bool   `json:"hosted_subdomain"`
}

type providersResponse struct {
	Active    string         `json:"active"`
	Providers []providerInfo `json:"providers"`
}

// Providers lists the registered edge providers, their serving model, and
// which one is active.
func (a *App) Providers(w http.ResponseWriter, r *http.Request) {
	names := a.Registry.Names()
	infos := make([]providerInfo, 0, len(names))
	for _, name := range names {
		p, ok := a.Registry.Lookup(name)
		if !ok {
			continue
		}
		infos = append(infos, providerInfo{
			ID:              name,
			HostedSubdomain: p.UsesHostedSubdomain(),
		})
	}
	a.json(w, http.StatusOK, providersResponse{
		Active:    a.Gen.Provider.Name(),
		Providers: infos,
	})
}
