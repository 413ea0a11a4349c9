package handler

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/parisxmas/windowspec/internal/view"
)

const (
	RouteLanding       = "/"
	RouteQuestionnaire = "/questionnaire"
	RouteResults       = "/results"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 16 && ct[:16] == "application/json"
}

// renderPage renders a full HTML page. Pages depend on per-request state, so
// they are never cached.
func renderPage(w http.ResponseWriter, rv *view.Renderer, name string, status int, data any) {
	var buf bytes.Buffer
	if err := rv.Render(&buf, name, data); err != nil {
		log.Printf("Render %s failed: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirectToLanding is the single fallback for a screen reached without the
// navigation state it requires.
func redirectToLanding(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, RouteLanding, http.StatusFound)
}
