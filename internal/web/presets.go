package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/preset"
)

// maxUploadSize limits uploaded CSV backups.
const maxUploadSize = 5 << 20

// PresetsPage handles GET /presets.
func (s *Server) PresetsPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Presets & backup")

	presets, err := s.Controller.Presets()
	if err != nil {
		slog.Warn("failed to list presets", "error", err)
		pd.Error = "Presets konden niet worden gevonden."
	}

	s.Templates.Render(w, "presets.html", &struct {
		PageData
		Presets    []string
		ExportName string
	}{
		PageData:   pd,
		Presets:    presets,
		ExportName: controller.ExportName(GetUser(r.Context())),
	})
}

// PresetLoadSubmit handles POST /presets. The current list is replaced, so
// the form must confirm the loss of progress.
func (s *Server) PresetLoadSubmit(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "on" {
		setFlash(w, "error", "Bevestig eerst dat je huidige lijst wordt vervangen.")
		http.Redirect(w, r, "/presets", http.StatusSeeOther)
		return
	}

	id := r.FormValue("preset")
	n, err := s.Controller.LoadPreset(r.Context(), GetUser(r.Context()), id)
	switch {
	case errors.Is(err, preset.ErrLoad):
		slog.Warn("failed to load preset", "preset", id, "error", err)
		setFlash(w, "error", "Kan presetlijst niet laden: "+err.Error())
	case err != nil:
		flashError(w, "Preset laden mislukt", err)
	default:
		setFlash(w, "success", fmt.Sprintf("Presetlijst geladen en toegepast! (%d items)", n))
	}
	http.Redirect(w, r, "/presets", http.StatusSeeOther)
}

// ExportDownload handles GET /export.
func (s *Server) ExportDownload(w http.ResponseWriter, r *http.Request) {
	u := GetUser(r.Context())

	var buf bytes.Buffer
	if err := s.Controller.Export(r.Context(), u, &buf); err != nil {
		slog.Error("failed to export list", "user", u.Key, "error", err)
		http.Error(w, "export failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", controller.ExportName(u)))
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

// ImportSubmit handles POST /import with a multipart CSV upload. The
// redirect afterwards keeps a reload from importing the file again.
func (s *Server) ImportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			setFlash(w, "error", "Bestand te groot (maximaal 5 MB).")
		} else {
			setFlash(w, "error", "Ongeldig formulier.")
		}
		http.Redirect(w, r, "/presets", http.StatusSeeOther)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		setFlash(w, "error", "Kies een CSV bestand.")
		http.Redirect(w, r, "/presets", http.StatusSeeOther)
		return
	}
	defer file.Close()

	n, err := s.Controller.Import(r.Context(), GetUser(r.Context()), file)
	if err != nil {
		flashError(w, "Fout bij inladen", err)
	} else {
		setFlash(w, "success", fmt.Sprintf("Paklijst hersteld uit upload! (%d items)", n))
	}
	http.Redirect(w, r, "/presets", http.StatusSeeOther)
}
