package middleware

import (
	"crypto/subtle"
	"net/http"

	"logboard/backend/config"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

var Store = sessions.NewCookieStore([]byte("super-secret-key-change-in-prod"))

// InitSession configures the session store from config. The session only
// records that a basic-auth check already succeeded, so GET /pages does
// not re-run bcrypt on every request.
func InitSession() {
	if config.C.Session.Secret != "" {
		Store = sessions.NewCookieStore([]byte(config.C.Session.Secret))
	}
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(config.C.Session.Timeout.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// RequireAPIKey guards log ingestion with the shared secret in X-API-Key.
// The comparison is length-checked constant-time and fails closed; an
// unset API_KEY disables the gate entirely.
func RequireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := config.C.APIKey
		if key == "" {
			next(w, r)
			return
		}
		got := r.Header.Get("X-API-Key")
		if len(got) != len(key) || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			unauthorized(w, "invalid or missing API key")
			return
		}
		next(w, r)
	}
}

// RequireWebAuth guards the page listing with HTTP basic auth, verified
// against the configured bcrypt hash. A successful check mints a session
// cookie that short-circuits later requests. Unset WEB_PASSWORD disables
// the gate.
func RequireWebAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := config.C.WebPassword
		if hash == "" {
			next(w, r)
			return
		}

		if session, err := Store.Get(r, "session"); err == nil {
			if ok, _ := session.Values["authenticated"].(bool); ok {
				next(w, r)
				return
			}
		}

		_, password, ok := r.BasicAuth()
		if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="logboard"`)
			unauthorized(w, "authentication required")
			return
		}

		session, _ := Store.Get(r, "session")
		session.Values["authenticated"] = true
		session.Save(r, w)
		next(w, r)
	}
}
