package api

import (
	"net/http"

	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/suggest"
)

// SuggestionsHandler handles the random picker and the feed of items other
// users have.
type SuggestionsHandler struct {
	Controller *controller.Controller
}

// Random handles GET /api/users/{user}/random. The suggestion is null when
// everything is packed.
func (h *SuggestionsHandler) Random(w http.ResponseWriter, r *http.Request) {
	st := controller.ViewState{User: GetUser(r.Context()).Key}

	_, item, err := h.Controller.Suggest(r.Context(), st)
	if err != nil {
		failure(w, err, "failed to pick an item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"suggestion": item})
}

// AcceptRandom handles POST /api/users/{user}/random/accept with the id and
// name of an earlier suggestion. A suggestion that is no longer unpacked
// yields 409.
func (h *SuggestionsHandler) AcceptRandom(w http.ResponseWriter, r *http.Request) {
	var req controller.Pending
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st := controller.ViewState{User: GetUser(r.Context()).Key}.WithSuggestion(&req)
	_, item, err := h.Controller.AcceptSuggestion(r.Context(), st)
	if err != nil {
		failure(w, err, "failed to accept suggestion")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// List handles GET /api/users/{user}/suggestions.
func (h *SuggestionsHandler) List(w http.ResponseWriter, r *http.Request) {
	feed, err := h.Controller.PeerSuggestions(r.Context(), GetUser(r.Context()))
	if err != nil {
		failure(w, err, "failed to list suggestions")
		return
	}
	jsonResponse(w, http.StatusOK, feed)
}

// Accept handles POST /api/users/{user}/suggestions.
func (h *SuggestionsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req suggest.Suggestion
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Controller.AcceptPeerSuggestion(r.Context(), GetUser(r.Context()), req)
	if err != nil {
		failure(w, err, "failed to add suggestion")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}
