package handler

import (
	"net/http"

	"github.com/parisxmas/windowspec/internal/locale"
	"github.com/parisxmas/windowspec/internal/models"
	"github.com/parisxmas/windowspec/internal/navstate"
	"github.com/parisxmas/windowspec/internal/preview"
	"github.com/parisxmas/windowspec/internal/view"
)

type ResultsHandler struct {
	nav      *navstate.Carrier
	previews *preview.Store
	render   *view.Renderer
}

func NewResultsHandler(nav *navstate.Carrier, previews *preview.Store, render *view.Renderer) *ResultsHandler {
	return &ResultsHandler{nav: nav, previews: previews, render: render}
}

// Show renders the routed results screen. It requires a ResultsEntry and
// redirects to the landing screen without one.
func (h *ResultsHandler) Show(w http.ResponseWriter, r *http.Request) {
	var entry navstate.ResultsEntry
	if err := h.nav.Take(w, r, RouteResults, &entry); err != nil {
		redirectToLanding(w, r)
		return
	}

	page := view.ResultsPage{
		L:        locale.FromContext(r.Context()),
		FormData: entry.FormData,
		Estimate: models.FixedEstimate(),
	}
	if p := entry.FormData.Photo; entry.FormData.HasPhoto && p != nil {
		if _, err := h.previews.Get(p.PreviewID); err == nil {
			page.PhotoURL = p.PreviewURL
		}
	}
	renderPage(w, h.render, view.PageResults, http.StatusOK, page)
}
