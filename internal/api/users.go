package api

import (
	"net/http"

	"github.com/erazemk/paklijst/internal/controller"
)

// UsersHandler handles the roster and progress endpoints.
type UsersHandler struct {
	Controller *controller.Controller
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Controller.Roster())
}

// AllProgress handles GET /api/progress.
func (h *UsersHandler) AllProgress(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Controller.AllProgress(r.Context())
	if err != nil {
		failure(w, err, "failed to compute progress")
		return
	}
	jsonResponse(w, http.StatusOK, reports)
}

// Progress handles GET /api/users/{user}/progress.
func (h *UsersHandler) Progress(w http.ResponseWriter, r *http.Request) {
	report, err := h.Controller.Progress(r.Context(), GetUser(r.Context()))
	if err != nil {
		failure(w, err, "failed to compute progress")
		return
	}
	jsonResponse(w, http.StatusOK, report)
}
