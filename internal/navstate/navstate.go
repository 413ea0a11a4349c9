// Package navstate carries typed messages across a single screen transition.
//
// A message is signed into a short-lived cookie scoped to the destination
// path and consumed by the destination on first read. It never appears in a
// URL and is gone after a reload.
package navstate

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/parisxmas/windowspec/internal/models"
)

var (
	ErrNoState  = errors.New("no navigation state")
	ErrTooLarge = errors.New("navigation state exceeds the cookie size limit")
)

const (
	DefaultTTL   = 5 * time.Minute
	cookiePrefix = "nav_"
	// Browsers drop cookies whose name and value exceed 4096 bytes.
	maxCookieBytes = 4096
)

// QuestionnaireEntry is sent from the landing screen to the questionnaire.
type QuestionnaireEntry struct {
	QuestionnaireType models.EntryMode `json:"questionnaireType"`
}

// ResultFormData is a Submission plus the explicit photo flag the results
// screen expects.
type ResultFormData struct {
	models.Submission
	HasPhoto bool `json:"hasPhoto"`
}

// ResultsEntry is what the routed results screen requires.
type ResultsEntry struct {
	FormData ResultFormData `json:"formData"`
}

type claims struct {
	Payload json.RawMessage `json:"payload"`
	jwt.RegisteredClaims
}

type Carrier struct {
	key []byte
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	used map[string]time.Time // token ID -> expiry
}

// NewCarrier derives the signing key from secret. The derivation is bound to
// this package so the same secret can key other components independently.
func NewCarrier(secret string, ttl time.Duration) (*Carrier, error) {
	if secret == "" {
		return nil, errors.New("navstate: empty secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("windowspec navstate v1"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("navstate: derive key: %w", err)
	}
	return &Carrier{key: key, ttl: ttl, now: time.Now, used: make(map[string]time.Time)}, nil
}

func cookieName(destination string) string {
	name := strings.Trim(destination, "/")
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" {
		name = "root"
	}
	return cookiePrefix + name
}

// Put attaches msg to the response for the screen at destination. Call it
// before writing the redirect. A message too large for a cookie is refused
// with ErrTooLarge and nothing is set.
func (c *Carrier) Put(w http.ResponseWriter, destination string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("navstate: encode: %w", err)
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{destination},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return fmt.Errorf("navstate: sign: %w", err)
	}
	name := cookieName(destination)
	if size := len(name) + len(signed); size > maxCookieBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    signed,
		Path:     destination,
		MaxAge:   int(c.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Take reads the message addressed to destination into out and clears it.
// Missing, expired, tampered or misaddressed state all report ErrNoState.
func (c *Carrier) Take(w http.ResponseWriter, r *http.Request, destination string, out any) error {
	name := cookieName(destination)
	cookie, err := r.Cookie(name)
	if err != nil {
		return ErrNoState
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     destination,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	var cl claims
	_, err = jwt.ParseWithClaims(cookie.Value, &cl, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(destination),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoState, err)
	}
	if !c.consume(cl.ID, cl.ExpiresAt.Time) {
		return fmt.Errorf("%w: token already used", ErrNoState)
	}
	if err := json.Unmarshal(cl.Payload, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrNoState, err)
	}
	return nil
}

// consume marks a token ID as used and reports whether it was fresh. Expired
// IDs are dropped since the signature check rejects those tokens anyway.
func (c *Carrier) consume(id string, exp time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.used {
		if now.After(e) {
			delete(c.used, k)
		}
	}
	if id == "" {
		return false
	}
	if _, ok := c.used[id]; ok {
		return false
	}
	c.used[id] = exp
	return true
}
