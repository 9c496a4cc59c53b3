package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ayush/research-intelligence/internal/models"
	"github.com/ayush/research-intelligence/internal/research"
	"github.com/ayush/research-intelligence/internal/session"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler serves the research form and its JSON twin.
type Handler struct {
	log      *logrus.Entry
	renderer reportRenderer
}

func NewHandler(log *logrus.Entry, sanitize bool) *Handler {
	h := &Handler{log: log}
	if sanitize {
		h.renderer.policy = reportPolicy()
	}
	return h
}

func controllerFrom(w http.ResponseWriter, r *http.Request) (*research.Controller, bool) {
	_, ctrl, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"no session"}`, http.StatusInternalServerError)
	}
	return ctrl, ok
}

// submit starts an attempt on a context that outlives the triggering request.
func (h *Handler) submit(r *http.Request, ctrl *research.Controller, req models.ResearchRequest) error {
	done, err := ctrl.Submit(context.WithoutCancel(r.Context()), req.Query, req.Email)
	if err != nil {
		return err
	}
	sid, _, _ := session.FromContext(r.Context())
	go func() {
		if err := <-done; err != nil {
			h.log.WithError(err).WithField("session", sid).Warn("report attempt failed")
		}
	}()
	return nil
}

// Index renders the form page for the caller's session.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := controllerFrom(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTmpl.Execute(w, h.renderer.page(ctrl.Snapshot())); err != nil {
		h.log.WithError(err).Error("render index")
	}
}

// Submit handles the HTML form post. Every outcome is reflected on the page,
// so it always redirects back to it.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := controllerFrom(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	req := models.ResearchRequest{Query: r.PostFormValue("query"), Email: r.PostFormValue("email")}

	if err := h.submit(r, ctrl, req); err != nil && !research.IsValidation(err) && !errors.Is(err, research.ErrSubmitInProgress) {
		h.log.WithError(err).Error("submit")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Dismiss removes a notification and returns to the page.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := controllerFrom(w, r)
	if !ok {
		return
	}
	ctrl.Dismiss(chi.URLParam(r, "id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// State returns the caller's controller snapshot.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := controllerFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// APISubmit is the JSON form of Submit.
func (h *Handler) APISubmit(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := controllerFrom(w, r)
	if !ok {
		return
	}
	var req models.ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := h.submit(r, ctrl, req)
	var ve *research.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ctrl.Snapshot())
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "query and email are required",
			"fields": ve.Fields,
		})
	case errors.Is(err, research.ErrSubmitInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a report is already being generated"})
	default:
		h.log.WithError(err).Error("api submit")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// DismissNotification is the JSON form of Dismiss.
func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := controllerFrom(w, r)
	if !ok {
		return
	}
	if !ctrl.Dismiss(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
