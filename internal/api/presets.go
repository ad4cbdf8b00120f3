package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/paklijst/internal/controller"
)

// maxUploadSize limits imported CSV files.
const maxUploadSize = 5 << 20

// PresetsHandler handles presets and CSV backup endpoints.
type PresetsHandler struct {
	Controller *controller.Controller
}

type loadPresetRequest struct {
	Preset string `json:"preset"`
}

// List handles GET /api/presets.
func (h *PresetsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Controller.Presets()
	if err != nil {
		failure(w, err, "failed to list presets")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	jsonResponse(w, http.StatusOK, ids)
}

// Load handles POST /api/users/{user}/preset. The user's list is replaced.
func (h *PresetsHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req loadPresetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Controller.LoadPreset(r.Context(), GetUser(r.Context()), req.Preset)
	if err != nil {
		failure(w, err, "failed to load preset")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"items": n})
}

// Export handles GET /api/users/{user}/export.
func (h *PresetsHandler) Export(w http.ResponseWriter, r *http.Request) {
	u := GetUser(r.Context())

	var buf bytes.Buffer
	if err := h.Controller.Export(r.Context(), u, &buf); err != nil {
		failure(w, err, "failed to export list")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", controller.ExportName(u)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

// Import handles PUT /api/users/{user}/import with a CSV body. The user's
// list is replaced.
func (h *PresetsHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	defer r.Body.Close()

	n, err := h.Controller.Import(r.Context(), GetUser(r.Context()), r.Body)
	if err != nil {
		failure(w, err, "failed to import list")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"items": n})
}
