package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/paklijst/internal/progress"
)

// UsersPage handles GET /.
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Wie ben jij?")
	current := GetState(r.Context()).User
	if u, err := s.Controller.User(current); err == nil {
		pd.User = &u
	}

	reports, err := s.Controller.AllProgress(r.Context())
	if err != nil {
		slog.Error("failed to compute progress", "error", err)
		pd.Error = "Voortgang kon niet worden geladen."
	}

	s.Templates.Render(w, "users.html", &struct {
		PageData
		Current string
		Reports []progress.UserReport
	}{
		PageData: pd,
		Current:  current,
		Reports:  reports,
	})
}

// SelectUserSubmit handles POST /user.
func (s *Server) SelectUserSubmit(w http.ResponseWriter, r *http.Request) {
	u, err := s.Controller.User(r.FormValue("user"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := s.saveState(w, GetState(r.Context()).WithUser(u.Key)); err != nil {
		slog.Error("failed to save session", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	redirectBack(w, r, "/list")
}
