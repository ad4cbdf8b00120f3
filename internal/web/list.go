package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/model"
)

// ListPage handles GET /list. The filter and q query values update the
// view state.
func (s *Server) ListPage(w http.ResponseWriter, r *http.Request) {
	st := GetState(r.Context())
	q := r.URL.Query()
	if q.Has("filter") {
		if f, err := model.ParseFilter(q.Get("filter")); err == nil {
			st = st.WithFilter(f)
		}
	}
	if q.Has("q") {
		st = st.WithSearch(strings.TrimSpace(q.Get("q")))
	}

	view, err := s.Controller.View(r.Context(), st)
	if err != nil {
		slog.Error("failed to load list", "user", GetUser(r.Context()).Key, "error", err)
	} else if err := s.saveState(w, view.State); err != nil {
		slog.Error("failed to save session", "error", err)
	}

	pd := s.page(w, r, "Paklijst")
	if err != nil {
		pd.Error = "De lijst kon niet worden geladen: " + err.Error()
	}

	s.Templates.Render(w, "list.html", &struct {
		PageData
		View *controller.View
	}{
		PageData: pd,
		View:     view,
	})
}

// ItemUpdateSubmit handles POST /items/{id} with one field and its value.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := formItemID(w, r)
	if !ok {
		return
	}

	field, err := model.ParseField(r.FormValue("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.Controller.Update(r.Context(), GetUser(r.Context()), id, field, r.FormValue("value")); err != nil {
		flashError(w, "Wijzigen mislukt", err)
	}
	redirectBack(w, r, "/list")
}

// ItemPackedSubmit handles POST /items/{id}/packed.
func (s *Server) ItemPackedSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := formItemID(w, r)
	if !ok {
		return
	}

	packed := r.FormValue("packed") == "true"
	if _, err := s.Controller.SetPacked(r.Context(), GetUser(r.Context()), id, packed); err != nil {
		flashError(w, "Inpakken mislukt", err)
	}
	redirectBack(w, r, "/list")
}

// ItemDeleteSubmit handles POST /items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := formItemID(w, r)
	if !ok {
		return
	}

	if _, err := s.Controller.Delete(r.Context(), GetUser(r.Context()), id); err != nil {
		flashError(w, "Verwijderen mislukt", err)
	}
	redirectBack(w, r, "/list")
}

// ItemRestoreSubmit handles POST /items/{id}/restore.
func (s *Server) ItemRestoreSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := formItemID(w, r)
	if !ok {
		return
	}

	if _, err := s.Controller.Restore(r.Context(), GetUser(r.Context()), id); err != nil {
		flashError(w, "Terugzetten mislukt", err)
	}
	redirectBack(w, r, "/list")
}

// QuickAddSubmit handles POST /quickadd.
func (s *Server) QuickAddSubmit(w http.ResponseWriter, r *http.Request) {
	category, known := model.ParseCategory(r.FormValue("category"))
	if !known {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	item, err := s.Controller.QuickAdd(r.Context(), GetState(r.Context()), category, r.FormValue("name"))
	if err != nil {
		flashError(w, "Toevoegen mislukt", err)
	} else {
		setFlash(w, "success", fmt.Sprintf("Toegevoegd: %s (%s)", item.Name, item.Category))
	}
	redirectBack(w, r, "/list")
}

// UnpackSubmit handles POST /unpack. The confirmation checkbox must be
// ticked.
func (s *Server) UnpackSubmit(w http.ResponseWriter, r *http.Request) {
	n, err := s.Controller.UnpackAll(r.Context(), GetUser(r.Context()), r.FormValue("confirm") == "on")
	if err != nil {
		flashError(w, "Uitpakken mislukt", err)
	} else {
		setFlash(w, "success", fmt.Sprintf("%d items uitgepakt.", n))
	}
	redirectBack(w, r, "/list")
}

// RandomSubmit handles POST /random.
func (s *Server) RandomSubmit(w http.ResponseWriter, r *http.Request) {
	st, item, err := s.Controller.Suggest(r.Context(), GetState(r.Context()))
	if err != nil {
		flashError(w, "Suggestie mislukt", err)
		redirectBack(w, r, "/list")
		return
	}
	if err := s.saveState(w, st); err != nil {
		slog.Error("failed to save session", "error", err)
	}
	if item == nil {
		setFlash(w, "success", "Geen niet-ingepakte items meer!")
	}
	redirectBack(w, r, "/list")
}

// RandomAcceptSubmit handles POST /random/accept.
func (s *Server) RandomAcceptSubmit(w http.ResponseWriter, r *http.Request) {
	st, item, err := s.Controller.AcceptSuggestion(r.Context(), GetState(r.Context()))
	if saveErr := s.saveState(w, st); saveErr != nil {
		slog.Error("failed to save session", "error", saveErr)
	}

	switch {
	case errors.Is(err, controller.ErrStaleSuggestion):
		setFlash(w, "error", "Deze suggestie is niet meer beschikbaar.")
	case err != nil:
		flashError(w, "Inpakken mislukt", err)
	default:
		setFlash(w, "success", "Ingepakt: "+item.Name)
	}
	redirectBack(w, r, "/list")
}

func formItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// flashError reports a failed action on the next page. Backend failures
// are logged as well.
func flashError(w http.ResponseWriter, action string, err error) {
	if !model.IsValidation(err) && !errors.Is(err, model.ErrNotFound) {
		slog.Error(strings.ToLower(action), "error", err)
	}
	setFlash(w, "error", action+": "+err.Error())
}
