package web

import (
	"net/http"

	"github.com/erazemk/paklijst/internal/controller"
	webembed "github.com/erazemk/paklijst/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(c *controller.Controller, secret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Controller: c,
		Templates:  templates,
		Secret:     secret,
	}

	mux := http.NewServeMux()
	sess := SessionMiddleware(secret)
	requireUser := RequireUser(c)
	user := func(h http.HandlerFunc) http.Handler {
		return sess(requireUser(h))
	}

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.Static))))

	// User picker.
	mux.Handle("GET /{$}", sess(http.HandlerFunc(s.UsersPage)))
	mux.Handle("POST /user", sess(http.HandlerFunc(s.SelectUserSubmit)))

	// List view.
	mux.Handle("GET /list", user(s.ListPage))
	mux.Handle("POST /items/{id}", user(s.ItemUpdateSubmit))
	mux.Handle("POST /items/{id}/packed", user(s.ItemPackedSubmit))
	mux.Handle("POST /items/{id}/delete", user(s.ItemDeleteSubmit))
	mux.Handle("POST /items/{id}/restore", user(s.ItemRestoreSubmit))
	mux.Handle("POST /quickadd", user(s.QuickAddSubmit))
	mux.Handle("POST /unpack", user(s.UnpackSubmit))
	mux.Handle("POST /random", user(s.RandomSubmit))
	mux.Handle("POST /random/accept", user(s.RandomAcceptSubmit))

	// Adding items.
	mux.Handle("GET /add", user(s.AddPage))
	mux.Handle("POST /add", user(s.AddSubmit))
	mux.Handle("POST /suggestions", user(s.SuggestionSubmit))

	// Presets and backup.
	mux.Handle("GET /presets", user(s.PresetsPage))
	mux.Handle("POST /presets", user(s.PresetLoadSubmit))
	mux.Handle("GET /export", user(s.ExportDownload))
	mux.Handle("POST /import", user(s.ImportSubmit))

	mux.Handle("GET /progress", user(s.ProgressPage))

	return mux, nil
}
