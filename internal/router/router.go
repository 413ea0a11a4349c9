package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/parisxmas/windowspec/internal/handler"
	"github.com/parisxmas/windowspec/internal/locale"
	mw "github.com/parisxmas/windowspec/internal/middleware"
)

func New(
	bundle *locale.Bundle,
	landingH *handler.LandingHandler,
	questionnaireH *handler.QuestionnaireHandler,
	resultsH *handler.ResultsHandler,
	previewH *handler.PreviewHandler,
	healthH *handler.HealthHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	r.Get("/healthz", healthH.Health)
	r.Get("/previews/{previewID}", previewH.Get)

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(bundle.Middleware)

		r.Get(handler.RouteLanding, landingH.Show)
		r.Post("/start", landingH.Start)

		r.Get(handler.RouteQuestionnaire, questionnaireH.Show)
		r.Post(handler.RouteQuestionnaire, questionnaireH.Submit)

		r.Get(handler.RouteResults, resultsH.Show)
	})

	// Field-level edits
	r.Route("/questionnaire/{sessionID}", func(r chi.Router) {
		r.Post("/fields/{field}", questionnaireH.SetField)
		r.Post("/safety/{tag}", questionnaireH.SetSafety)
		r.Post("/photo", questionnaireH.SelectPhoto)
		r.Post("/summary", questionnaireH.Summary)
		r.Post("/close", questionnaireH.Close)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	return r
}
