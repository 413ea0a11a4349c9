package preview

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

// pngHeader is enough for the content sniffer to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestAcquireRelease(t *testing.T) {
	s := NewStore(1 << 20)

	p, err := s.Acquire("window.png", "", pngHeader)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if p.ContentType != "image/png" {
		t.Errorf("expected image/png, got %s", p.ContentType)
	}
	if !strings.HasPrefix(p.URL(), URLPrefix) || !strings.HasSuffix(p.URL(), p.ID) {
		t.Errorf("unexpected url %s", p.URL())
	}
	if s.Live() != 1 {
		t.Fatalf("expected 1 live handle, got %d", s.Live())
	}

	got, err := s.Get(p.ID)
	if err != nil || got != p {
		t.Fatalf("get: %v", err)
	}

	if !s.Release(p.ID) {
		t.Fatal("release returned false for a live handle")
	}
	if s.Release(p.ID) {
		t.Fatal("second release should be a no-op")
	}
	if s.Live() != 0 {
		t.Fatalf("expected 0 live handles, got %d", s.Live())
	}
	if _, err := s.Get(p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAcquireRejects(t *testing.T) {
	s := NewStore(16)

	if _, err := s.Acquire("a.png", "", nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if _, err := s.Acquire("notes.txt", "text/plain", []byte("hello")); !errors.Is(err, ErrNotImage) {
		t.Errorf("expected ErrNotImage, got %v", err)
	}
	if _, err := s.Acquire("big.png", "", make([]byte, 17)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if s.Live() != 0 {
		t.Errorf("rejected uploads must not hold handles, live=%d", s.Live())
	}
}

func TestAcquireFallsBackToExtension(t *testing.T) {
	s := NewStore(0)
	p, err := s.Acquire("drawing.svg", "", []byte("<svg xmlns='http://www.w3.org/2000/svg'></svg>"))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if p.ContentType != "image/svg+xml" {
		t.Errorf("expected image/svg+xml, got %s", p.ContentType)
	}
}

func TestAcquireBoundsFileName(t *testing.T) {
	s := NewStore(1 << 20)

	p, err := s.Acquire("uploads/"+strings.Repeat("я", 200)+".png", "", pngHeader)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if len(p.FileName) > maxFileNameBytes {
		t.Errorf("file name is %d bytes, want at most %d", len(p.FileName), maxFileNameBytes)
	}
	if !utf8.ValidString(p.FileName) {
		t.Error("file name cut inside a rune")
	}
	if strings.Contains(p.FileName, "/") {
		t.Errorf("directory kept in %q", p.FileName)
	}
}
