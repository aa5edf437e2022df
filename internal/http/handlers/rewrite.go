package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/rewrite"
)

const maxRewriteBodyBytes = 1 << 20

type rewriteRequest struct {
	HTML    string   `json:"html"`
	Context string   `json:"context,omitempty"`
	Sizes   string   `json:"sizes,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

type rewriteResponse struct {
	HTML        string `json:"html"`
	Transformed bool   `json:"transformed"`
}

// Rewrite transforms one <img> fragment. Fragments the engine cannot or
// should not touch come back unchanged with transformed=false.
func (a *App) Rewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	body := http.MaxBytesReader(w, r.Body, maxRewriteBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		a.jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HTML == "" {
		a.jsonError(w, http.StatusBadRequest, "html is required")
		return
	}

	res := a.Rewriter.Rewrite(r.Context(), req.HTML, rewrite.Options{
		Context:          domain.ParseContext(req.Context),
		Sizes:            req.Sizes,
		ContainerClasses: req.Classes,
	})

	a.json(w, http.StatusOK, rewriteResponse{HTML: res.HTML, Transformed: res.Transformed})
}
