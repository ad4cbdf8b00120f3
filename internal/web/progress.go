package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/paklijst/internal/progress"
)

// ProgressPage handles GET /progress.
func (s *Server) ProgressPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Voortgang")
	u := GetUser(r.Context())

	report, err := s.Controller.Progress(r.Context(), u)
	if err != nil {
		slog.Error("failed to compute progress", "user", u.Key, "error", err)
		pd.Error = "Voortgang kon niet worden geladen."
	}
	others, err := s.Controller.OthersProgress(r.Context(), u)
	if err != nil {
		slog.Error("failed to compute progress of other users", "error", err)
	}

	s.Templates.Render(w, "progress.html", &struct {
		PageData
		Report progress.Report
		Others []progress.UserReport
	}{
		PageData: pd,
		Report:   report,
		Others:   others,
	})
}
