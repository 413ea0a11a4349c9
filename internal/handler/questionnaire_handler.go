package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/windowspec/internal/catalog"
	"github.com/parisxmas/windowspec/internal/locale"
	"github.com/parisxmas/windowspec/internal/models"
	"github.com/parisxmas/windowspec/internal/navstate"
	"github.com/parisxmas/windowspec/internal/preview"
	"github.com/parisxmas/windowspec/internal/service"
	"github.com/parisxmas/windowspec/internal/view"
)

// multipartOverhead leaves room for the text fields next to the photo.
const multipartOverhead = 1 << 20

type QuestionnaireHandler struct {
	svc           *service.QuestionnaireService
	nav           *navstate.Carrier
	catalog       *catalog.Catalog
	render        *view.Renderer
	maxPhotoBytes int64
}

func NewQuestionnaireHandler(
	svc *service.QuestionnaireService,
	nav *navstate.Carrier,
	cat *catalog.Catalog,
	render *view.Renderer,
	maxPhotoBytes int64,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{svc: svc, nav: nav, catalog: cat, render: render, maxPhotoBytes: maxPhotoBytes}
}

func (h *QuestionnaireHandler) page(r *http.Request, sess *service.Session) view.QuestionnairePage {
	return view.QuestionnairePage{
		L:          locale.FromContext(r.Context()),
		SessionID:  sess.ID,
		Mode:       sess.Mode,
		Sections:   h.catalog.Sections,
		Submission: sess.Submission,
		Submitted:  sess.Submitted,
		Estimate:   sess.Estimate,
	}
}

// Show opens a fresh questionnaire for the entry mode chosen on the landing
// screen. Without that state the visitor is sent back to the landing screen.
func (h *QuestionnaireHandler) Show(w http.ResponseWriter, r *http.Request) {
	var entry navstate.QuestionnaireEntry
	if err := h.nav.Take(w, r, RouteQuestionnaire, &entry); err != nil || !entry.QuestionnaireType.Valid() {
		redirectToLanding(w, r)
		return
	}
	sess, err := h.svc.Start(entry.QuestionnaireType)
	if err != nil {
		redirectToLanding(w, r)
		return
	}
	log.Printf("Questionnaire started: session=%s mode=%s", sess.ID, sess.Mode)
	renderPage(w, h.render, view.PageQuestionnaire, http.StatusOK, h.page(r, sess))
}

// Submit applies the posted form and reveals the results on the same page.
// Nothing is validated beyond enum membership and the text length; the result
// is always the fixed estimate. A rejected post changes nothing.
func (h *QuestionnaireHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxPhotoBytes + multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			http.Error(w, "photo is too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id := r.PostFormValue("session")
	in := service.FormInput{
		Fields: map[models.Field]string{},
		// Unchecked boxes are not posted, so an absent tag means unchecked.
		Safety: r.PostForm[string(models.FieldSafetyRequirements)],
	}
	for _, f := range models.Fields() {
		if vals := r.PostForm[string(f)]; len(vals) > 0 && models.IsScalar(f) {
			in.Fields[f] = vals[0]
		}
	}

	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File[string(models.FieldPhoto)]; len(fhs) > 0 && fhs[0].Size > 0 {
			f, err := fhs[0].Open()
			if err != nil {
				http.Error(w, "failed to read photo", http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, "failed to read photo", http.StatusBadRequest)
				return
			}
			in.Photo = &service.PhotoUpload{
				FileName:    fhs[0].Filename,
				ContentType: fhs[0].Header.Get("Content-Type"),
				Data:        data,
			}
		}
	}

	sess, err := h.svc.SubmitForm(id, in)
	if errors.Is(err, service.ErrSessionNotFound) {
		redirectToLanding(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	log.Printf("Questionnaire submitted: session=%s mode=%s", sess.ID, sess.Mode)
	renderPage(w, h.render, view.PageQuestionnaire, http.StatusOK, h.page(r, sess))
}

// SetField replaces a single field. The value comes from a "value" form
// field or a JSON body {"value": "..."}.
func (h *QuestionnaireHandler) SetField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	field := models.Field(chi.URLParam(r, "field"))

	var value string
	if isJSON(r) {
		var req struct {
			Value string `json:"value"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		value = req.Value
	} else {
		value = r.FormValue("value")
	}

	sub, err := h.svc.SetField(id, field, value)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// SetSafety sets one safety requirement. With no "checked" value the tag is
// toggled.
func (h *QuestionnaireHandler) SetSafety(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	tag := chi.URLParam(r, "tag")

	var (
		sub models.Submission
		err error
	)
	if raw := r.FormValue("checked"); raw != "" {
		checked, perr := strconv.ParseBool(raw)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "checked must be true or false")
			return
		}
		sub, err = h.svc.SetSafety(id, tag, checked)
	} else {
		sub, err = h.svc.ToggleSafety(id, tag)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// SelectPhoto stores one image and returns the updated submission with its
// preview URL.
func (h *QuestionnaireHandler) SelectPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxPhotoBytes + multipartOverhead); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "photo is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart form required")
		return
	}

	file, header, err := r.FormFile(string(models.FieldPhoto))
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read photo")
		return
	}

	sub, err := h.svc.SelectPhoto(id, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Summary hands the current submission to the routed results screen.
func (h *QuestionnaireHandler) Summary(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Handoff(chi.URLParam(r, "sessionID"))
	if err != nil {
		redirectToLanding(w, r)
		return
	}
	if err := h.nav.Put(w, RouteResults, entry); err != nil {
		log.Printf("Navigation state for %s failed: %v", RouteResults, err)
		if errors.Is(err, navstate.ErrTooLarge) {
			http.Error(w, "summary is too large to carry", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, RouteResults, http.StatusSeeOther)
}

// Close tears the questionnaire down and releases its preview.
func (h *QuestionnaireHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.svc.Close(id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, preview.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrUnknownField),
		errors.Is(err, models.ErrInvalidOption),
		errors.Is(err, models.ErrUnknownSafety),
		errors.Is(err, models.ErrTooLong),
		errors.Is(err, preview.ErrNotImage),
		errors.Is(err, preview.ErrEmpty):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
