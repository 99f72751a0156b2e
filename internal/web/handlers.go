package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/aretw0/jotter/pkg/core"
)

const (
	msgEmptyInput  = "Add note to save!"
	msgSaveFailed  = "Could not save the note. Your text is still here."
	msgListFailed  = "Could not load notes."
	msgSavedNoList = "Note saved, but the list could not be reloaded."
)

type sortRequest struct {
	Sort string `validate:"required,oneof=NewestToOldest OldestToNewest"`
}

type notesResponse struct {
	Sort  core.Directive `json:"sort"`
	Notes []string       `json:"notes"`
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, v pageView) {
	templ.Handler(page(v), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (s *Server) directive() core.Directive {
	d, err := s.prefs.LoadDirective()
	if err != nil {
		s.logger.Warn("load sort preference failed", "error", err)
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(w, r)
	if !s.gate.LoggedIn(r) {
		s.render(w, r, http.StatusOK, pageView{})
		return
	}

	d := s.directive()
	v := pageView{LoggedIn: true, Sort: d}
	if draft, ok := s.drafts.Get(key); ok {
		v.Input = draft
	}

	items, err := s.svc.Refresh(r.Context(), d)
	if err != nil {
		s.logger.Error("refresh notes failed", "error", err)
		v.Items = s.svc.Display().Items()
		v.Message = msgListFailed
		s.render(w, r, http.StatusInternalServerError, v)
		return
	}
	v.Items = items
	s.render(w, r, http.StatusOK, v)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.gate.Login(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(w, r)
	s.debounce.Cancel(key)
	s.drafts.Clear(key)
	if err := s.prefs.ClearDirective(); err != nil {
		s.logger.Warn("reset sort preference failed", "error", err)
	}
	s.gate.Logout(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(w, r)
	field := &core.TextField{Name: key, Text: r.PostFormValue("content")}
	d := s.directive()

	// A late draft write must not resurrect text that is about to be saved.
	s.debounce.Cancel(key)

	_, err := s.svc.Save(r.Context(), field, d)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)

	case errors.Is(err, core.ErrEmptyInput):
		s.render(w, r, http.StatusBadRequest, pageView{
			LoggedIn: true,
			Input:    field.Value(),
			Message:  msgEmptyInput,
			Sort:     d,
			Items:    s.svc.Display().Items(),
		})

	case field.Value() == "":
		// Saved; only the refresh failed.
		s.render(w, r, http.StatusInternalServerError, pageView{
			LoggedIn: true,
			Message:  msgSavedNoList,
			Sort:     d,
			Items:    s.svc.Display().Items(),
		})

	default:
		s.render(w, r, http.StatusInternalServerError, pageView{
			LoggedIn: true,
			Input:    field.Value(),
			Message:  msgSaveFailed,
			Sort:     d,
			Items:    s.svc.Display().Items(),
		})
	}
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	key := sessionKey(w, r)
	text := r.PostFormValue("content")

	s.debounce.Trigger(key, func() {
		s.drafts.Set(key, text)
		s.logger.Debug("draft saved", "session", key, "draft", text)
	})
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	req := sortRequest{Sort: r.PostFormValue("sort")}
	if err := s.validate.Struct(req); err != nil {
		http.Error(w, "unknown sort order", http.StatusBadRequest)
		return
	}

	if err := s.prefs.SaveDirective(core.Directive(req.Sort)); err != nil {
		s.logger.Error("save sort preference failed", "error", err)
		http.Error(w, "could not save sort order", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAPINotes(w http.ResponseWriter, r *http.Request) {
	if !s.gate.LoggedIn(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
		return
	}

	d := s.directive()
	if raw := r.URL.Query().Get("sort"); raw != "" {
		d = core.ParseDirective(raw)
	}

	items, err := s.svc.Refresh(r.Context(), d)
	if err != nil {
		s.logger.Error("refresh notes failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list notes"})
		return
	}
	writeJSON(w, http.StatusOK, notesResponse{Sort: d, Notes: items})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
