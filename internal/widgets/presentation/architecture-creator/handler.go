package architecturecreator

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	apperrors "solution-creator/internal/common/errors"
	"solution-creator/internal/common/logger"

	"github.com/go-chi/chi/v5"
)

const (
	SessionCookie = "sac_session"
	maxBodyBytes  = 1 << 20
)

// Handler serves the widget to browsers.
type Handler struct {
	sessions  *SessionRegistry
	presenter *Presenter
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	cookieTTL time.Duration
}

func NewHandler(sessions *SessionRegistry, presenter *Presenter, log logger.Logger, cookieTTL time.Duration) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{
		sessions:  sessions,
		presenter: presenter,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
		cookieTTL: cookieTTL,
	}
}

// Routes returns the widget endpoints, relative to wherever they are mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/submit", h.Submit)
	r.Put("/fields/{field}", h.SetField)
	r.Get("/state", h.State)
	return r
}

// Index renders the caller's widget. A visitor without a session sees a blank
// form; the session is opened by the first write.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.existing(w, r)
	if !ok {
		h.render(w, r, http.StatusOK, View{State: State{Phase: PhaseIdle}})
		return
	}
	h.render(w, r, http.StatusOK, View{
		State: ctrl.State(),
		Form:  ctrl.Store().Snapshot(),
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.controller(w, r)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.errors.HandleHTTPError(w, r, apperrors.NewFormValidationFailedError([]string{"body"}))
		return
	}
	for _, name := range FieldNames {
		if values, ok := r.PostForm[name]; ok && len(values) > 0 {
			_ = ctrl.Set(name, values[0])
		}
	}

	// the webhook call outlives a closed browser tab
	st, err := ctrl.Submit(context.WithoutCancel(r.Context()))

	var invalid *InvalidFormError
	switch {
	case err == nil:
		h.render(w, r, http.StatusOK, View{State: st, Form: ctrl.Store().Snapshot()})
	case stderrors.As(err, &invalid):
		h.render(w, r, http.StatusUnprocessableEntity, View{
			State:  st,
			Form:   ctrl.Store().Snapshot(),
			Errors: invalid.Errors,
		})
	case stderrors.Is(err, apperrors.ErrSubmissionInFlight):
		h.render(w, r, http.StatusConflict, View{State: st, Form: ctrl.Store().Snapshot()})
	default:
		h.errors.HandleHTTPError(w, r, err)
	}
}

func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	ctrl, err := h.controller(w, r)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	field := chi.URLParam(r, "field")

	value, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.errors.HandleHTTPError(w, r, apperrors.NewFormValidationFailedError([]string{field}))
		return
	}
	if err := ctrl.Set(field, string(value)); err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stateResponse struct {
	SessionID string   `json:"sessionId"`
	State     State    `json:"state"`
	Form      FormData `json:"form"`
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.existing(w, r)
	if !ok {
		writeJSON(w, http.StatusOK, stateResponse{State: State{Phase: PhaseIdle}})
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		SessionID: ctrl.SessionID(),
		State:     ctrl.State(),
		Form:      ctrl.Store().Snapshot(),
	})
}

// existing resolves the caller's session without opening one.
func (h *Handler) existing(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	id := sessionID(r)
	ctrl, ok := h.sessions.Lookup(id)
	if ok {
		h.setCookie(w, r, id)
	}
	return ctrl, ok
}

// controller resolves or opens the caller's session and refreshes its cookie.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*Controller, error) {
	sid, ctrl, err := h.sessions.Get(sessionID(r))
	if err != nil {
		return nil, err
	}
	h.setCookie(w, r, sid)
	return ctrl, nil
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) setCookie(w http.ResponseWriter, r *http.Request, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, v View) {
	v.Action = "submit"
	html, err := h.presenter.Render(v)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
