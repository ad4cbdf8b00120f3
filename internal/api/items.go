package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/store"
)

// ItemsHandler handles item list endpoints.
type ItemsHandler struct {
	Controller *controller.Controller
}

type updateItemRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type packedRequest struct {
	Packed bool `json:"packed"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// List handles GET /api/users/{user}/items?filter=&q=.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := controller.ViewState{User: GetUser(r.Context()).Key}.
		WithFilter(filter).
		WithSearch(r.URL.Query().Get("q"))

	view, err := h.Controller.View(r.Context(), st)
	if err != nil {
		failure(w, err, "failed to list items")
		return
	}

	items := []model.Item{}
	for _, g := range view.Groups {
		items = append(items, g.Items...)
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/users/{user}/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req store.Draft
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Controller.Add(r.Context(), GetUser(r.Context()), req)
	if err != nil {
		failure(w, err, "failed to create item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/users/{user}/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.Controller.Item(r.Context(), GetUser(r.Context()), id)
	if err != nil {
		failure(w, err, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PATCH /api/users/{user}/items/{id}. Exactly one field is
// set per request.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	field, err := model.ParseField(req.Field)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.Controller.Update(r.Context(), GetUser(r.Context()), id, field, req.Value)
	if err != nil {
		failure(w, err, "failed to update item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/users/{user}/items/{id}. The item is only
// marked deleted.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.Controller.Delete(r.Context(), GetUser(r.Context()), id)
	if err != nil {
		failure(w, err, "failed to delete item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Restore handles POST /api/users/{user}/items/{id}/restore.
func (h *ItemsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.Controller.Restore(r.Context(), GetUser(r.Context()), id)
	if err != nil {
		failure(w, err, "failed to restore item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// SetPacked handles PUT /api/users/{user}/items/{id}/packed.
func (h *ItemsHandler) SetPacked(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req packedRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Controller.SetPacked(r.Context(), GetUser(r.Context()), id, req.Packed)
	if err != nil {
		failure(w, err, "failed to update item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UnpackAll handles POST /api/users/{user}/unpack. The body must confirm
// the action.
func (h *ItemsHandler) UnpackAll(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Controller.UnpackAll(r.Context(), GetUser(r.Context()), req.Confirm)
	if err != nil {
		failure(w, err, "failed to unpack items")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"unpacked": n})
}

func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return 0, false
	}
	return id, true
}
