package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storycanvas/internal/domain"
)

type galleryResponse struct {
	SessionID string                  `json:"session_id"`
	Images    []domain.GeneratedImage `json:"images"`
}

// ListGallery returns the session's images, newest first.
func (a *App) ListGallery(w http.ResponseWriter, r *http.Request) {
	sid, state := a.sessionState(r)
	images := state.List()
	if images == nil {
		images = []domain.GeneratedImage{}
	}
	a.json(w, http.StatusOK, galleryResponse{SessionID: sid, Images: images})
}

// DeleteImage removes one image from the session gallery.
func (a *App) DeleteImage(w http.ResponseWriter, r *http.Request) {
	_, state := a.sessionState(r)
	if !state.Remove(chi.URLParam(r, "id")) {
		a.fail(w, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
