package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/model"
	"github.com/erazemk/paklijst/internal/session"
)

type webContextKey string

const (
	webStateKey webContextKey = "webstate"
	webUserKey  webContextKey = "webuser"
)

const (
	sessionCookie = "paklijst"
	flashCookie   = "paklijst_flash"
)

// SessionMiddleware decodes the view state cookie and adds it to the
// context. A missing or invalid cookie yields an empty state.
func SessionMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var st controller.ViewState
			if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
				decoded, err := session.Decode(secret, cookie.Value)
				if err != nil {
					clearCookie(w, sessionCookie)
				} else {
					st = decoded
				}
			}

			ctx := context.WithValue(r.Context(), webStateKey, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser redirects to the user picker unless the state names a known
// user, and adds that user to the context.
func RequireUser(c *controller.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := c.User(GetState(r.Context()).User)
			if err != nil {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), webUserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetState retrieves the view state from the context.
func GetState(ctx context.Context) controller.ViewState {
	st, _ := ctx.Value(webStateKey).(controller.ViewState)
	return st
}

// GetUser retrieves the selected user from the context.
func GetUser(ctx context.Context) model.User {
	u, _ := userFrom(ctx)
	return u
}

func userFrom(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(webUserKey).(model.User)
	return u, ok
}

// saveState writes the view state cookie.
func (s *Server) saveState(w http.ResponseWriter, st controller.ViewState) error {
	token, err := session.Encode(s.Secret, st)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(session.Expiry.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// setFlash stores a one-shot message shown on the next page.
func setFlash(w http.ResponseWriter, kind, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.Values{kind: {msg}}.Encode(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears the pending error and success messages.
func popFlash(w http.ResponseWriter, r *http.Request) (errMsg, okMsg string) {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return "", ""
	}
	clearCookie(w, flashCookie)

	v, err := url.ParseQuery(cookie.Value)
	if err != nil {
		return "", ""
	}
	return v.Get("error"), v.Get("success")
}

// clearCookie clears a cookie with consistent attributes.
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectBack returns to the page named by the "back" form value, or to
// fallback. Only local paths are followed.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := r.FormValue("back")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
