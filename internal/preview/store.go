package preview

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

var (
	ErrEmpty    = errors.New("image data is empty")
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("image exceeds the size limit")
	ErrNotFound = errors.New("preview not found")
)

// Preview is one live image handle.
type Preview struct {
	ID          string
	FileName    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// URL is where the preview is served while it is live.
func (p *Preview) URL() string {
	return URLPrefix + p.ID
}

const URLPrefix = "/previews/"

// Store holds previews in memory until they are released. Every Acquire must
// be paired with a Release; Live reports handles still outstanding.
type Store struct {
	mu       sync.RWMutex
	items    map[string]*Preview
	maxBytes int64
	live     *atomic.Int64
}

func NewStore(maxBytes int64) *Store {
	return &Store{
		items:    make(map[string]*Preview),
		maxBytes: maxBytes,
		live:     atomic.NewInt64(0),
	}
}

// Acquire validates data as an image and registers a new handle for it.
func (s *Store) Acquire(fileName, contentType string, data []byte) (*Preview, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), s.maxBytes)
	}
	ct := imageContentType(fileName, contentType, data)
	if ct == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, fileName)
	}

	p := &Preview{
		ID:          uuid.New().String(),
		FileName:    baseName(fileName),
		ContentType: ct,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.items[p.ID] = p
	s.mu.Unlock()
	s.live.Inc()
	return p, nil
}

// Release frees a handle. Releasing an unknown or already released handle is
// a no-op so teardown paths can call it unconditionally.
func (s *Store) Release(id string) bool {
	s.mu.Lock()
	_, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()
	if ok {
		s.live.Dec()
	}
	return ok
}

func (s *Store) Get(id string) (*Preview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Live is the number of handles acquired and not yet released.
func (s *Store) Live() int64 {
	return s.live.Load()
}

// maxFileNameBytes matches the common filesystem limit on a single name.
const maxFileNameBytes = 255

// baseName strips directories from a client supplied name and cuts it to
// maxFileNameBytes on a rune boundary.
func baseName(fileName string) string {
	name := filepath.Base(fileName)
	if len(name) <= maxFileNameBytes {
		return name
	}
	cut := maxFileNameBytes
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// imageContentType sniffs data first and falls back to the declared type and
// the file extension. It returns "" for anything that is not an image.
func imageContentType(fileName, declared string, data []byte) string {
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
		return ct
	}
	// SVG and some HEIC files are not recognized by the sniffer.
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return typeByExtension(fileName)
}

func typeByExtension(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	types := map[string]string{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
		".bmp":  "image/bmp",
		".svg":  "image/svg+xml",
		".heic": "image/heic",
	}
	return types[ext]
}
