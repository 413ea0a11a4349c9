package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := New("en")
	if err != nil {
		t.Fatalf("new bundle: %v", err)
	}
	return b
}

func TestLocalizeEnglish(t *testing.T) {
	l := newBundle(t).Localizer()
	if l.Lang != "en" {
		t.Fatalf("expected en, got %s", l.Lang)
	}
	got := l.T("ResultPrice", map[string]any{"Range": "$2,500 - $3,000"})
	if got != "Estimated Price: $2,500 - $3,000" {
		t.Fatalf("unexpected price text %q", got)
	}
	if got := l.T(OptionID("glassType", "energy-saving")); got != "Energy-saving" {
		t.Errorf("unexpected option label %q", got)
	}
}

func TestLocalizeAcceptLanguage(t *testing.T) {
	b := newBundle(t)
	l := b.Localizer("ru-RU,ru;q=0.9,en;q=0.8")
	if l.Lang != "ru" {
		t.Fatalf("expected ru, got %s", l.Lang)
	}
	if got := l.T("Calculate"); got != "Рассчитать" {
		t.Errorf("unexpected label %q", got)
	}

	if l := b.Localizer("de-DE"); l.Lang != "en" {
		t.Errorf("unsupported language should fall back to en, got %s", l.Lang)
	}
}

func TestUnknownMessageEchoesID(t *testing.T) {
	l := newBundle(t).Localizer()
	if got := l.T("NoSuchMessage"); got != "NoSuchMessage" {
		t.Errorf("expected id echo, got %q", got)
	}
	var nilLoc *Localizer
	if got := nilLoc.T("Select"); got != "Select" {
		t.Errorf("nil localizer should echo, got %q", got)
	}
}

func TestEveryLanguageHasTheSameMessages(t *testing.T) {
	b := newBundle(t)
	en := b.Localizer("en")
	ru := b.Localizer("ru")
	for _, id := range []string{"LandingTitle", "SectionPhoto", "FieldSolarCoefficient", OptionID("purpose", "roof")} {
		if ru.T(id) == en.T(id) {
			t.Errorf("%s: ru translation missing", id)
		}
	}
}

func TestMiddlewareQueryOverridesHeader(t *testing.T) {
	b := newBundle(t)
	var seen string
	h := b.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context()).Lang
	}))

	req := httptest.NewRequest("GET", "/?lang=ru", nil)
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if seen != "ru" {
		t.Fatalf("expected ru, got %s", seen)
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != "ru" {
		t.Fatal("expected lang cookie to be set")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "ru" {
		t.Errorf("cookie choice not honored, got %s", seen)
	}
}
