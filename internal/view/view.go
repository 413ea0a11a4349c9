// Package view renders the landing, questionnaire and results pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/parisxmas/windowspec/internal/catalog"
	"github.com/parisxmas/windowspec/internal/locale"
	"github.com/parisxmas/windowspec/internal/models"
	"github.com/parisxmas/windowspec/internal/navstate"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLanding       = "landing"
	PageQuestionnaire = "questionnaire"
	PageResults       = "results"
)

// ModeCard is one landing choice.
type ModeCard struct {
	Mode  models.EntryMode
	Title string
	Body  string
	Icon  string
}

type LandingPage struct {
	L     *locale.Localizer
	Modes []ModeCard
}

type QuestionnairePage struct {
	L          *locale.Localizer
	SessionID  string
	Mode       models.EntryMode
	Sections   []catalog.Section
	Submission models.Submission
	Submitted  bool
	Estimate   *models.Estimate
}

type ResultsPage struct {
	L        *locale.Localizer
	FormData navstate.ResultFormData
	Estimate models.Estimate
	// PhotoURL is set only when the uploaded photo is still live.
	PhotoURL string
}

// LandingModes returns the three landing cards.
func LandingModes() []ModeCard {
	return []ModeCard{
		{Mode: models.ModeParameters, Title: "ModeParametersTitle", Body: "ModeParametersBody", Icon: "▦"},
		{Mode: models.ModePhoto, Title: "ModePhotoTitle", Body: "ModePhotoBody", Icon: "📷"},
		{Mode: models.ModeBoth, Title: "ModeBothTitle", Body: "ModeBothBody", Icon: "🖼"},
	}
}

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd argument count")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
		"value": func(s models.Submission, f models.Field) string {
			v, _ := s.Get(f)
			return v
		},
		"optionID": func(f models.Field, v string) string {
			return locale.OptionID(string(f), v)
		},
		"hasSafety": func(s models.Submission, tag string) bool {
			return s.HasSafety(tag)
		},
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageLanding, PageQuestionnaire, PageResults} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes a page into w. The page is buffered so a template error
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
