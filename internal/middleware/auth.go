package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/medmole/medmole/internal/auth"
	"github.com/medmole/medmole/internal/store"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "medmole_session"

// RequireAuth validates the session cookie and populates the auth context.
// Unauthenticated requests are refused before any side effect: API requests
// get a JSON 401, everything else a redirect to the login page.
func RequireAuth(sessionStore *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				refuse(w, r)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				refuse(w, r)
				return
			}

			ac := auth.Context{
				UserID:    sess.UserID,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func refuse(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func isAPIRequest(r *http.Request) bool {
	if len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/" {
		return true
	}
	return r.Header.Get("Accept") == "application/json"
}
