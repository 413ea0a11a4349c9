package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/windowspec/internal/preview"
)

type PreviewHandler struct {
	store *preview.Store
}

func NewPreviewHandler(store *preview.Store) *PreviewHandler {
	return &PreviewHandler{store: store}
}

// Get serves a live preview. Released previews are gone for good.
func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(chi.URLParam(r, "previewID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	// Uploaded SVGs must not run scripts.
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	w.Write(p.Data)
}
