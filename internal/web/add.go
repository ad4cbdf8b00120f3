package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/store"
	"github.com/erazemk/paklijst/internal/suggest"
)

// AddPage handles GET /add.
func (s *Server) AddPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Toevoegen")

	feed, err := s.Controller.PeerSuggestions(r.Context(), GetUser(r.Context()))
	if err != nil {
		slog.Error("failed to list suggestions", "error", err)
		pd.Error = "Suggesties konden niet worden geladen."
	}

	s.Templates.Render(w, "add.html", &struct {
		PageData
		Suggestions []suggest.Suggestion
		Categories  []model.Category
	}{
		PageData:    pd,
		Suggestions: feed,
		Categories:  model.Categories(),
	})
}

// AddSubmit handles POST /add.
func (s *Server) AddSubmit(w http.ResponseWriter, r *http.Request) {
	item, err := s.Controller.Add(r.Context(), GetUser(r.Context()), store.Draft{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Notes:    r.FormValue("notes"),
	})
	if err != nil {
		flashError(w, "Toevoegen mislukt", err)
	} else {
		setFlash(w, "success", fmt.Sprintf("Toegevoegd: %s (%s)", item.Name, item.Category))
	}
	http.Redirect(w, r, "/add", http.StatusSeeOther)
}

// SuggestionSubmit handles POST /suggestions.
func (s *Server) SuggestionSubmit(w http.ResponseWriter, r *http.Request) {
	item, err := s.Controller.AcceptPeerSuggestion(r.Context(), GetUser(r.Context()), suggest.Suggestion{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
	})
	if err != nil {
		flashError(w, "Toevoegen mislukt", err)
	} else {
		setFlash(w, "success", fmt.Sprintf("Toegevoegd: %s (%s)", item.Name, item.Category))
	}
	http.Redirect(w, r, "/add", http.StatusSeeOther)
}
