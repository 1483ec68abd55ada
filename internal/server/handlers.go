package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/version"
	"github.com/conneroisu/contactform/internal/view"
)

// maxFormBytes bounds a posted form; six short text fields fit easily.
const maxFormBytes = 64 << 10

// redirectNavigator turns a navigation into a 303 See Other.
type redirectNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

func (n redirectNavigator) Navigate(_ context.Context, path string) error {
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
	return nil
}

// formID keeps a client supplied id only when it is a UUID.
func formID(raw string) string {
	if id, err := uuid.Parse(raw); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (s *Server) newForm(id string, nav contact.Navigator) *contact.Form {
	return contact.NewForm(s.creator, nav,
		contact.WithID(id),
		contact.WithLogger(s.logger),
		contact.WithPolicy(s.policy),
		contact.WithFlightGroup(s.flights),
	)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, v view.FormView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := view.NewContactPage(v).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render contact page")
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, view.SubmitPath, http.StatusSeeOther)
}

// handleNewForm mounts a fresh form.
func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	form := s.newForm(uuid.NewString(), redirectNavigator{w, r})
	v := view.ViewOf(form)
	v.Live = true
	s.render(w, r, http.StatusOK, v)
}

// handleSubmit replays the posted fields into a form and submits it.
// Empty posted fields are left unset: a plain post cannot tell an untouched
// control from one that was cleared.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form := s.newForm(formID(r.PostForm.Get("form_id")), redirectNavigator{w, r})
	for _, f := range contact.Fields {
		if value := r.PostForm.Get(f.Name()); value != "" {
			form.OnFieldChange(contact.Change(f, value))
		}
	}

	result := form.OnSubmit(r.Context())

	v := view.ViewOf(form)
	v.Live = true

	status := http.StatusOK
	if result.DefaultPrevented {
		status = http.StatusUnprocessableEntity
	}
	s.render(w, r, status, v)
}

// handleCancel leaves the form for the contacts listing.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	_ = r.ParseForm()

	form := s.newForm(formID(r.PostForm.Get("form_id")), redirectNavigator{w, r})
	if err := form.OnCancel(r.Context()); err != nil {
		s.logger.Error(r.Context(), err, "Failed to navigate away from form")
		http.Error(w, "Navigation failed", http.StatusInternalServerError)
	}
}

// handleContacts is where cancel lands.
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.ContactsPage().Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render contacts page")
	}
}

// handleHealth returns the server health status for health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.Get().Short(),
		"checks": map[string]interface{}{
			"server": map[string]interface{}{"status": "healthy", "message": "HTTP server operational"},
			"form": map[string]interface{}{
				"block_invalid": s.policy.BlockInvalid,
				"single_flight": s.policy.SingleFlight,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode health response")
	}
}
