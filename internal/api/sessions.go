package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Create()
	if err != nil {
		writeError(w, r, "create session", err)
		return
	}
	respond(w, r, http.StatusCreated, sess)
}

// GetSession handles GET /sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get session", err)
		return
	}
	respond(w, r, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectScenario handles PUT /sessions/{id}/scenario.
func (h *Handler) SelectScenario(w http.ResponseWriter, r *http.Request) {
	var req SelectScenarioRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "select scenario", err)
		return
	}
	sess, err := h.sessions.SelectScenario(chi.URLParam(r, "id"), req.ScenarioID)
	if err != nil {
		writeError(w, r, "select scenario", err)
		return
	}
	respond(w, r, http.StatusOK, sess)
}

// SelectSequence handles PUT /sessions/{id}/sequence.
func (h *Handler) SelectSequence(w http.ResponseWriter, r *http.Request) {
	var req SelectSequenceRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "select sequence", err)
		return
	}
	sess, err := h.sessions.SelectSequence(chi.URLParam(r, "id"), req.SequenceID)
	if err != nil {
		writeError(w, r, "select sequence", err)
		return
	}
	respond(w, r, http.StatusOK, sess)
}

// SelectFrame handles PUT /sessions/{id}/frame.
func (h *Handler) SelectFrame(w http.ResponseWriter, r *http.Request) {
	var req SelectFrameRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "select frame", err)
		return
	}
	sess, err := h.sessions.SelectFrame(chi.URLParam(r, "id"), req.Frame)
	if err != nil {
		writeError(w, r, "select frame", err)
		return
	}
	respond(w, r, http.StatusOK, sess)
}

// Navigate handles POST /sessions/{id}/navigate.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "navigate", err)
		return
	}
	sess, err := h.sessions.Navigate(chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeError(w, r, "navigate", err)
		return
	}
	respond(w, r, http.StatusOK, sess)
}

// SetFrameInput handles PUT /sessions/{id}/frame-input. The value is applied
// asynchronously; the outcome arrives on the event stream.
func (h *Handler) SetFrameInput(w http.ResponseWriter, r *http.Request) {
	var req FrameInputRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "frame input", err)
		return
	}
	sess, err := h.sessions.SetFrameInput(chi.URLParam(r, "id"), req.Value)
	if err != nil {
		writeError(w, r, "frame input", err)
		return
	}
	respond(w, r, http.StatusAccepted, sess)
}

// GetTheme handles GET /sessions/{id}/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get theme", err)
		return
	}
	respond(w, r, http.StatusOK, ThemeResponse{DarkMode: sess.DarkMode})
}

// SetTheme handles PUT /sessions/{id}/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "set theme", err)
		return
	}
	sess, err := h.sessions.SetDarkMode(chi.URLParam(r, "id"), req.DarkMode)
	if err != nil {
		writeError(w, r, "set theme", err)
		return
	}
	respond(w, r, http.StatusOK, ThemeResponse{DarkMode: sess.DarkMode})
}
