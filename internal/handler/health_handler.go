package handler

import (
	"net/http"

	"github.com/parisxmas/windowspec/internal/preview"
	"github.com/parisxmas/windowspec/internal/service"
)

type HealthHandler struct {
	svc      *service.QuestionnaireService
	previews *preview.Store
}

func NewHealthHandler(svc *service.QuestionnaireService, previews *preview.Store) *HealthHandler {
	return &HealthHandler{svc: svc, previews: previews}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"sessions":     h.svc.Count(),
		"livePreviews": h.previews.Live(),
	})
}
