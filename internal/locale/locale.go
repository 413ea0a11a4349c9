// Package locale resolves UI strings for the questionnaire pages.
package locale

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed messages/*.toml
var messageFS embed.FS

const cookieName = "lang"

type contextKey string

const LocalizerContextKey contextKey = "localizer"

type Bundle struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	def     language.Tag
}

// New loads every embedded message file. defaultLang is used when nothing the
// client asks for is available.
func New(defaultLang string) (*Bundle, error) {
	def, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("default language: %w", err)
	}
	b := i18n.NewBundle(def)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := messageFS.ReadDir("messages")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		p := path.Join("messages", e.Name())
		data, err := messageFS.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
	}

	// The default goes first so the matcher falls back to it.
	tags := []language.Tag{def}
	for _, t := range b.LanguageTags() {
		if t != def {
			tags = append(tags, t)
		}
	}
	return &Bundle{bundle: b, matcher: language.NewMatcher(tags), def: def}, nil
}

// Languages lists the loaded languages, default first.
func (b *Bundle) Languages() []string {
	out := []string{b.def.String()}
	for _, t := range b.bundle.LanguageTags() {
		if t != b.def {
			out = append(out, t.String())
		}
	}
	return out
}

// Localizer picks the best loaded language for the given preferences, which
// may be plain tags or Accept-Language header values.
func (b *Bundle) Localizer(prefs ...string) *Localizer {
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	_, idx, _ := b.matcher.Match(tags...)
	tag := b.def
	if langs := b.Languages(); idx >= 0 && idx < len(langs) {
		tag = language.Make(langs[idx])
	}
	return &Localizer{
		loc:  i18n.NewLocalizer(b.bundle, tag.String()),
		Lang: tag.String(),
	}
}

// Middleware attaches a Localizer to the request context. An explicit ?lang=
// choice is remembered in a cookie.
func (b *Bundle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("lang")
		if query != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    query,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		var saved string
		if c, err := r.Cookie(cookieName); err == nil {
			saved = c.Value
		}
		l := b.Localizer(query, saved, r.Header.Get("Accept-Language"))
		ctx := context.WithValue(r.Context(), LocalizerContextKey, l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request Localizer, or a pass-through one that
// echoes message IDs when none was attached.
func FromContext(ctx context.Context) *Localizer {
	l, _ := ctx.Value(LocalizerContextKey).(*Localizer)
	if l == nil {
		return &Localizer{}
	}
	return l
}

type Localizer struct {
	loc  *i18n.Localizer
	Lang string
}

// T localizes id. Unknown IDs are returned unchanged so a missing translation
// never breaks a page.
func (l *Localizer) T(id string, data ...map[string]any) string {
	if l == nil || l.loc == nil {
		return id
	}
	cfg := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	s, err := l.loc.Localize(cfg)
	if err != nil && s == "" {
		return id
	}
	return s
}

// OptionID is the message ID of an option label.
func OptionID(field, value string) string {
	return "Option_" + field + "_" + value
}
