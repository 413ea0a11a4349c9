package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parisxmas/windowspec/internal/models"
	"github.com/parisxmas/windowspec/internal/navstate"
	"github.com/parisxmas/windowspec/internal/preview"
)

var ErrSessionNotFound = errors.New("questionnaire session not found")

// Session is one open questionnaire. It owns its Submission and at most one
// preview handle.
type Session struct {
	ID         string
	Mode       models.EntryMode
	Submission models.Submission
	Submitted  bool
	Estimate   *models.Estimate
	CreatedAt  time.Time
	TouchedAt  time.Time
}

// QuestionnaireService keeps open questionnaires in memory. Nothing is
// persisted: a session ends when it is closed, when it idles past the TTL or
// when the process stops, and its preview is released in every case.
type QuestionnaireService struct {
	mu       sync.Mutex
	sessions map[string]*Session
	previews *preview.Store
	ttl      time.Duration
	now      func() time.Time
}

func NewQuestionnaireService(previews *preview.Store, ttl time.Duration) *QuestionnaireService {
	return &QuestionnaireService{
		sessions: make(map[string]*Session),
		previews: previews,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start opens a questionnaire seeded with defaults. The mode is recorded but
// does not change the field set.
func (s *QuestionnaireService) Start(mode models.EntryMode) (*Session, error) {
	if !mode.Valid() {
		return nil, errors.New("invalid entry mode")
	}
	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		Mode:       mode,
		Submission: models.NewSubmission(),
		CreatedAt:  now,
		TouchedAt:  now,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	cp := *sess
	return &cp, nil
}

// Get returns a copy of the session state.
func (s *QuestionnaireService) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// update applies fn to the current snapshot and stores the result. fn must
// not retain its argument.
func (s *QuestionnaireService) update(id string, fn func(models.Submission) (models.Submission, error)) (models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return models.Submission{}, ErrSessionNotFound
	}
	next, err := fn(sess.Submission)
	if err != nil {
		return sess.Submission, err
	}
	sess.Submission = next
	sess.TouchedAt = s.now()
	return next, nil
}

// SetField replaces one scalar field.
func (s *QuestionnaireService) SetField(id string, field models.Field, value string) (models.Submission, error) {
	return s.update(id, func(sub models.Submission) (models.Submission, error) {
		return sub.With(field, value)
	})
}

// SetSafety adds or removes one safety requirement tag.
func (s *QuestionnaireService) SetSafety(id, tag string, checked bool) (models.Submission, error) {
	return s.update(id, func(sub models.Submission) (models.Submission, error) {
		return sub.WithSafety(tag, checked)
	})
}

func (s *QuestionnaireService) ToggleSafety(id, tag string) (models.Submission, error) {
	return s.update(id, func(sub models.Submission) (models.Submission, error) {
		return sub.ToggleSafety(tag)
	})
}

// PhotoUpload is an image posted for a session.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

func photoOf(p *preview.Preview) *models.Photo {
	return &models.Photo{
		PreviewID:   p.ID,
		PreviewURL:  p.URL(),
		FileName:    p.FileName,
		ContentType: p.ContentType,
		Size:        int64(len(p.Data)),
	}
}

// SelectPhoto stores a new image for the session. The new preview is acquired
// before the old one is released, and the old one is released even if the
// session vanished in between, so at most one handle per session stays live.
func (s *QuestionnaireService) SelectPhoto(id, fileName, contentType string, data []byte) (models.Submission, error) {
	if _, err := s.Get(id); err != nil {
		return models.Submission{}, err
	}
	p, err := s.previews.Acquire(fileName, contentType, data)
	if err != nil {
		return models.Submission{}, err
	}

	var prior string
	sub, err := s.update(id, func(sub models.Submission) (models.Submission, error) {
		if sub.Photo != nil {
			prior = sub.Photo.PreviewID
		}
		return sub.WithPhoto(photoOf(p)), nil
	})
	if err != nil {
		s.previews.Release(p.ID)
		return sub, err
	}
	if prior != "" {
		s.previews.Release(prior)
	}
	return sub, nil
}

// FormInput is a full questionnaire post. Safety lists the checked tags;
// absent tags are unchecked. Photo is optional.
type FormInput struct {
	Fields map[models.Field]string
	Safety []string
	Photo  *PhotoUpload
}

// SubmitForm applies a whole form post and moves the session to its terminal
// submitted state with the fixed estimate. Values are not range checked. On
// the first invalid value nothing is applied and the session and its preview
// are left as they were.
func (s *QuestionnaireService) SubmitForm(id string, in FormInput) (*Session, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	var p *preview.Preview
	if in.Photo != nil {
		var err error
		p, err = s.previews.Acquire(in.Photo.FileName, in.Photo.ContentType, in.Photo.Data)
		if err != nil {
			return nil, err
		}
	}
	abort := func(err error) (*Session, error) {
		if p != nil {
			s.previews.Release(p.ID)
		}
		return nil, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return abort(ErrSessionNotFound)
	}
	next, err := mergeForm(sess.Submission, in)
	if err != nil {
		s.mu.Unlock()
		return abort(err)
	}
	var prior string
	if p != nil {
		if next.Photo != nil {
			prior = next.Photo.PreviewID
		}
		next = next.WithPhoto(photoOf(p))
	}
	est := models.FixedEstimate()
	sess.Submission = next
	sess.Submitted = true
	sess.Estimate = &est
	sess.TouchedAt = s.now()
	cp := *sess
	s.mu.Unlock()

	if prior != "" {
		s.previews.Release(prior)
	}
	return &cp, nil
}

// mergeForm builds the next snapshot from sub without touching it.
func mergeForm(sub models.Submission, in FormInput) (models.Submission, error) {
	next := sub
	var err error
	for _, f := range models.Fields() {
		v, ok := in.Fields[f]
		if !ok {
			continue
		}
		if next, err = next.With(f, v); err != nil {
			return sub, err
		}
	}
	for f := range in.Fields {
		if !models.IsScalar(f) {
			return sub, fmt.Errorf("%w: %q", models.ErrUnknownField, f)
		}
	}

	checked := make(map[string]bool, len(in.Safety))
	for _, tag := range in.Safety {
		if !models.IsOption(models.FieldSafetyRequirements, tag) {
			return sub, fmt.Errorf("%w: %q", models.ErrUnknownSafety, tag)
		}
		checked[tag] = true
	}
	for _, tag := range models.Options(models.FieldSafetyRequirements) {
		if next, err = next.WithSafety(tag, checked[tag]); err != nil {
			return sub, err
		}
	}
	return next, nil
}

// Handoff builds the payload the routed results screen expects.
func (s *QuestionnaireService) Handoff(id string) (navstate.ResultsEntry, error) {
	sess, err := s.Get(id)
	if err != nil {
		return navstate.ResultsEntry{}, err
	}
	return navstate.ResultsEntry{
		FormData: navstate.ResultFormData{
			Submission: sess.Submission,
			HasPhoto:   sess.Submission.Photo != nil,
		},
	}, nil
}

// Close ends a session and releases its preview.
func (s *QuestionnaireService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.release(sess)
	return nil
}

func (s *QuestionnaireService) release(sess *Session) {
	if sess.Submission.Photo != nil {
		s.previews.Release(sess.Submission.Photo.PreviewID)
	}
}

// Sweep closes sessions idle for longer than the TTL and reports how many.
func (s *QuestionnaireService) Sweep(now time.Time) int {
	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.TouchedAt) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, sess := range expired {
		s.release(sess)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes every session.
func (s *QuestionnaireService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			n := s.CloseAll()
			log.Printf("Questionnaire sessions closed on shutdown: %d", n)
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				log.Printf("Expired %d idle questionnaire sessions", n)
			}
		}
	}
}

// CloseAll ends every session.
func (s *QuestionnaireService) CloseAll() int {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range all {
		s.release(sess)
	}
	return len(all)
}

// Count is the number of open sessions.
func (s *QuestionnaireService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
