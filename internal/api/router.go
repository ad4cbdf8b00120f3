package api

import (
	"net/http"

	"github.com/erazemk/paklijst/internal/controller"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(c *controller.Controller) http.Handler {
	mux := http.NewServeMux()

	usersHandler := &UsersHandler{Controller: c}
	itemsHandler := &ItemsHandler{Controller: c}
	suggestionsHandler := &SuggestionsHandler{Controller: c}
	presetsHandler := &PresetsHandler{Controller: c}

	user := UserMiddleware(c)

	mux.HandleFunc("GET /api/users", usersHandler.List)
	mux.HandleFunc("GET /api/progress", usersHandler.AllProgress)
	mux.HandleFunc("GET /api/presets", presetsHandler.List)

	// Per-user list.
	mux.Handle("GET /api/users/{user}/items", user(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/users/{user}/items", user(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/users/{user}/items/{id}", user(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PATCH /api/users/{user}/items/{id}", user(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/users/{user}/items/{id}", user(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/users/{user}/items/{id}/restore", user(http.HandlerFunc(itemsHandler.Restore)))
	mux.Handle("PUT /api/users/{user}/items/{id}/packed", user(http.HandlerFunc(itemsHandler.SetPacked)))
	mux.Handle("POST /api/users/{user}/unpack", user(http.HandlerFunc(itemsHandler.UnpackAll)))

	mux.Handle("GET /api/users/{user}/progress", user(http.HandlerFunc(usersHandler.Progress)))

	// Suggestions.
	mux.Handle("GET /api/users/{user}/random", user(http.HandlerFunc(suggestionsHandler.Random)))
	mux.Handle("POST /api/users/{user}/random/accept", user(http.HandlerFunc(suggestionsHandler.AcceptRandom)))
	mux.Handle("GET /api/users/{user}/suggestions", user(http.HandlerFunc(suggestionsHandler.List)))
	mux.Handle("POST /api/users/{user}/suggestions", user(http.HandlerFunc(suggestionsHandler.Accept)))

	// Backup and presets.
	mux.Handle("GET /api/users/{user}/export", user(http.HandlerFunc(presetsHandler.Export)))
	mux.Handle("PUT /api/users/{user}/import", user(http.HandlerFunc(presetsHandler.Import)))
	mux.Handle("POST /api/users/{user}/preset", user(http.HandlerFunc(presetsHandler.Load)))

	return mux
}
