package handler

import (
	"log"
	"net/http"

	"github.com/parisxmas/windowspec/internal/locale"
	"github.com/parisxmas/windowspec/internal/models"
	"github.com/parisxmas/windowspec/internal/navstate"
	"github.com/parisxmas/windowspec/internal/view"
)

type LandingHandler struct {
	render *view.Renderer
	nav    *navstate.Carrier
}

func NewLandingHandler(render *view.Renderer, nav *navstate.Carrier) *LandingHandler {
	return &LandingHandler{render: render, nav: nav}
}

func (h *LandingHandler) Show(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.render, view.PageLanding, http.StatusOK, view.LandingPage{
		L:     locale.FromContext(r.Context()),
		Modes: view.LandingModes(),
	})
}

// Start forwards the chosen entry mode to the questionnaire.
func (h *LandingHandler) Start(w http.ResponseWriter, r *http.Request) {
	mode, err := models.ParseEntryMode(r.FormValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.nav.Put(w, RouteQuestionnaire, navstate.QuestionnaireEntry{QuestionnaireType: mode}); err != nil {
		log.Printf("Navigation state for %s failed: %v", RouteQuestionnaire, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, RouteQuestionnaire, http.StatusSeeOther)
}
