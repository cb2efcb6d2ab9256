package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"art-showcase/pkg/services"
)

// AdminRouter returns the maintenance routes, meant to be mounted under a private prefix
func (h *Handlers) AdminRouter() http.Handler {
	r := chi.NewRouter()
	r.Post("/reload", h.ReloadHandler)
	r.Post("/check", h.CheckHandler)
	return r
}

// ReloadHandler fetches the manifest again and replaces the working images
func (h *Handlers) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("reloading manifest")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	count := h.svc.Refresh(ctx)

	h.writeJSON(w, map[string]any{
		"message": "Manifest reloaded",
		"images":  count,
		"version": h.svc.Store().Version(),
	})
}

// CheckHandler downloads every manifest image and reports the ones that are broken
func (h *Handlers) CheckHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Concurrency int  `json:"concurrency"`
		OnlyFailed  bool `json:"onlyFailed"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	images := h.svc.Images()
	h.logger.Info("checking images", "count", len(images), "concurrency", req.Concurrency)

	results := services.CheckImages(r.Context(), nil, images, req.Concurrency)
	failed := 0
	filtered := results[:0:0]
	for _, res := range results {
		if res.Status != services.StatusOK {
			failed++
		}
		if !req.OnlyFailed || res.Status != services.StatusOK {
			filtered = append(filtered, res)
		}
	}

	h.writeJSON(w, map[string]any{
		"message": "Image check completed",
		"checked": len(results),
		"failed":  failed,
		"results": filtered,
	})
}
