package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evgeniy-krivenko/notepad/internal/api/notes/converter"
	"github.com/evgeniy-krivenko/notepad/internal/ctxtr"
	"github.com/evgeniy-krivenko/notepad/internal/entity"
	"github.com/evgeniy-krivenko/notepad/internal/usecase/assist"
	"github.com/evgeniy-krivenko/notepad/internal/view"
	"github.com/evgeniy-krivenko/notepad/pkg/logger/slogx"
)

type Handler struct {
	sessions *Sessions
}

func NewRouter(sessions *Sessions) http.Handler {
	h := &Handler{sessions: sessions}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(slogx.LoggingMiddleware)
	r.Use(ctxtr.SessionMiddleware)

	r.Get("/state", h.state)
	r.Get("/events", h.events)
	r.Post("/reload", h.reload)

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.add)

		r.Route("/{id}", func(r chi.Router) {
			r.Patch("/", h.update)
			r.Post("/select", h.selectNote)
			r.Post("/trash", h.trash)
			r.Post("/restore", h.restore)
			r.Post("/delete-request", h.requestDelete)
			r.Post("/assist/{action}", h.assist)
		})
	})

	r.Post("/delete/confirm", h.confirmDelete)
	r.Post("/delete/cancel", h.cancelDelete)

	return r
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	es, err := ctxtr.Session(r.Context())
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}

	sess, err := h.sessions.get(r.Context(), es)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}

	return sess, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	q := sess.Query()
	params := r.URL.Query()
	if params.Has("view") {
		mode, err := entity.ParseViewMode(params.Get("view"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q.Mode = mode
	}
	if params.Has("q") {
		q.Search = params.Get("q")
	}
	if params.Has("sort") {
		sort, err := view.ParseSort(params.Get("sort"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q.Sort = sort
	}
	sess.SetQuery(q)

	st := sess.engine.State()
	active, trash := view.Counts(st.Notes)

	resp := converter.NoteList{
		Notes:  converter.ConvertNotesToDTO(view.Project(st.Notes, q)),
		View:   string(q.Mode),
		Search: q.Search,
		Sort:   string(q.Sort),
		Counts: converter.Counts{Active: active, Trash: trash},
	}
	if n, ok := view.ActiveNote(st.Notes, st.ActiveID); ok {
		dto := converter.ConvertNoteToDTO(n)
		resp.Active = &dto
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	note, err := sess.engine.AddNote(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := sess.Query()
	q.Mode = entity.ViewActive
	q.Search = ""
	sess.SetQuery(q)

	writeJSON(w, http.StatusCreated, converter.ConvertNoteToDTO(note))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req converter.NoteUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if err := sess.engine.UpdateNote(r.Context(), id, req.Fields()); err != nil {
		writeError(w, r, err)
		return
	}

	note, err := sess.engine.Note(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.ConvertNoteToDTO(note))
}

func (h *Handler) selectNote(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeResult(w, r, sess.engine.SelectNote(chi.URLParam(r, "id")))
}

func (h *Handler) trash(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeResult(w, r, sess.engine.MoveToTrash(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeResult(w, r, sess.engine.RestoreFromTrash(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) requestDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeResult(w, r, sess.engine.RequestPermanentDelete(chi.URLParam(r, "id")))
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeResult(w, r, sess.engine.ConfirmPermanentDelete(r.Context()))
}

func (h *Handler) cancelDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.engine.CancelPermanentDelete()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) assist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if sess.assist == nil {
		http.Error(w, "text assistant is not configured", http.StatusServiceUnavailable)
		return
	}

	var (
		id   = chi.URLParam(r, "id")
		note entity.Note
		err  error
	)

	switch chi.URLParam(r, "action") {
	case "enhance":
		note, err = sess.assist.Enhance(r.Context(), id)
	case "grammar":
		note, err = sess.assist.FixGrammar(r.Context(), id)
	case "title":
		note, err = sess.assist.GenerateTitle(r.Context(), id)
	case "tone":
		tone, perr := assist.ParseTone(r.URL.Query().Get("tone"))
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		note, err = sess.assist.ChangeTone(r.Context(), id, tone)
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.ConvertNoteToDTO(note))
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeResult(w, r, sess.engine.Load(r.Context()))
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, converter.ConvertStateToDTO(sess.engine.State(), sess.alerts.Drain()))
}

// events streams a state snapshot after every engine change as server-sent events.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	send := func(st entity.State) bool {
		data, err := json.Marshal(converter.ConvertStateToDTO(st, sess.alerts.Drain()))
		if err != nil {
			slogx.Error(r.Context(), "failed to encode state event", slogx.Err(err))
			return false
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	changes := sess.engine.Subscribe(r.Context())
	if !send(sess.engine.State()) {
		return
	}
	for st := range changes {
		if !send(st) {
			return
		}
	}
}

func writeResult(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, entity.ErrNoteNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, entity.ErrNoPendingDelete),
		errors.Is(err, entity.ErrDeleteInProgress),
		errors.Is(err, entity.ErrNoteNotPersisted):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrNoteInTrash):
		status = http.StatusUnprocessableEntity
	}

	if status >= http.StatusInternalServerError {
		slogx.Error(r.Context(), "request failed", slogx.Err(err))
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
