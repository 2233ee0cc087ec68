package web

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hpungsan/armina/internal/config"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/learn"
	"github.com/hpungsan/armina/internal/library"
	"github.com/hpungsan/armina/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	lib      *library.Library
	sessions *learn.Registry
	cfg      *config.Config
	renderer *Renderer
	logger   *zap.Logger
}

// HandleList handles GET /capsules: the capsule library.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Query:   q.Get("q"),
		Subject: q.Get("subject"),
		Level:   q.Get("level"),
		Limit:   parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:  parseIntParam(r, "offset", 0),
	}

	result, err := ops.List(r.Context(), h.lib, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "library", LibraryPageData{
		PageData:   h.renderer.page("Library", "library"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Query:      input.Query,
		Subject:    input.Subject,
		Level:      input.Level,
		Message:    q.Get("msg"),
	})
}

// HandleNew handles GET /capsules/new: an empty author form.
func (h *Handlers) HandleNew(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "author", AuthorPageData{
		PageData: h.renderer.page("New capsule", "new"),
		Form:     ops.SaveInput{Level: h.cfg.DefaultLevel},
	})
}

// HandleEdit handles GET /capsules/{id}/edit: the author form for an existing capsule.
func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	form, err := ops.LoadForm(r.Context(), h.lib, chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "author", AuthorPageData{
		PageData: h.renderer.page("Edit "+form.Title, "library"),
		Form:     *form,
		Editing:  true,
	})
}

// HandleSave handles POST /capsules: create or update from the author form.
// Validation failures re-render the form with the user's input intact.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.SaveInput{
		ID:             r.FormValue("id"),
		Title:          r.FormValue("title"),
		Subject:        r.FormValue("subject"),
		Level:          r.FormValue("level"),
		NotesText:      r.FormValue("notes"),
		FlashcardsText: r.FormValue("flashcards"),
		QuizText:       r.FormValue("quiz"),
		ConfirmEmpty:   parseFormBool(r, "confirm_empty"),
	}

	result, err := ops.Save(r.Context(), h.lib, h.cfg, input)
	if err != nil {
		aErr := asArminaError(err)
		if wantsJSON(r) || aErr.Code == errors.ErrInternal || aErr.Code == errors.ErrCancelled {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderer.renderPageStatus(w, r, aErr.Status, "author", AuthorPageData{
			PageData:     h.renderer.page("Fix capsule", "new"),
			Form:         input,
			Editing:      strings.TrimSpace(input.ID) != "",
			Error:        aErr.Message,
			NeedsConfirm: aErr.Code == errors.ErrEmptyCapsule,
		})
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	redirectLibrary(w, r, "Saved "+result.Title)
}

// HandleDelete handles DELETE /capsules/{id} and POST /capsules/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.lib, chi.URLParam(r, "id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/capsules")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	redirectLibrary(w, r, "Capsule deleted")
}

// HandleReset handles POST /capsules/reset: clear the whole library.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.Reset(r.Context(), h.lib)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	redirectLibrary(w, r, result.Message)
}

// HandleExport handles GET /export: download the library as one JSON document.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := ops.BuildExport(r.Context(), h.lib)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	data, err := ops.EncodeExport(doc)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filename := ops.DefaultExportFileName(time.Now().Format("2006-01-02T150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleImport handles POST /import: upload an export document (multipart field "file").
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ops.MaxImportBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid upload"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ops.MaxImportBytes+1))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}
	if len(data) > ops.MaxImportBytes {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("import file is too large"))
		return
	}

	result, err := ops.ImportDocument(r.Context(), h.lib, h.cfg, data)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	redirectLibrary(w, r, "Imported "+strconv.Itoa(result.Imported)+" capsules")
}

// HandleLearnStart handles POST /capsules/{id}/learn: open a learn session.
func (h *Handlers) HandleLearnStart(w http.ResponseWriter, r *http.Request) {
	session, err := learn.Start(r.Context(), h.lib.Records, chi.URLParam(r, "id"), h.logger)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.sessions.Add(session)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, session.View())
		return
	}
	http.Redirect(w, r, "/learn/"+session.ID, http.StatusSeeOther)
}

// HandleLearn handles GET /learn/{sid}: the learn page.
func (h *Handlers) HandleLearn(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderLearn(w, r, http.StatusOK, session, nil, "")
}

// HandleFlashcard handles POST /learn/{sid}/flashcard: prev, next or flip.
func (h *Handlers) HandleFlashcard(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	card, err := session.Flashcard(r.FormValue("action"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, card)
		return
	}
	http.Redirect(w, r, "/learn/"+session.ID+"#flashcards", http.StatusSeeOther)
}

// HandleAnswer handles POST /learn/{sid}/answer: submit a quiz choice.
// A missing choice is reported as NO_SELECTION without advancing.
func (h *Handlers) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	choice := -1
	if raw := strings.TrimSpace(r.FormValue("choice")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("choice must be an integer"))
			return
		}
		choice = n
	}

	answer, err := session.Answer(r.Context(), choice)
	if err != nil {
		aErr := asArminaError(err)
		if wantsJSON(r) || aErr.Code == errors.ErrInternal {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderLearn(w, r, aErr.Status, session, nil, aErr.Message)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, answer)
		return
	}
	h.renderLearn(w, r, http.StatusOK, session, answer, "")
}

func (h *Handlers) renderLearn(w http.ResponseWriter, r *http.Request, status int, session *learn.Session, answer *learn.Answer, msg string) {
	view := session.View()
	if wantsJSON(r) {
		renderJSON(w, status, view)
		return
	}
	h.renderer.renderPageStatus(w, r, status, "learn", LearnPageData{
		PageData: h.renderer.page(view.Title, "library"),
		View:     view,
		Notes:    renderNotes(view.Notes),
		Answer:   answer,
		Error:    msg,
	})
}

// redirectLibrary sends the browser back to the library with a flash message.
func redirectLibrary(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/capsules?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseFormBool parses a checkbox-style form value.
func parseFormBool(r *http.Request, name string) bool {
	s := r.FormValue(name)
	return s == "true" || s == "1" || s == "on"
}
