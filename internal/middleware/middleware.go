package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/interniverse/backend/internal/utils"
)

type SessionFetcher interface {
	FindSession(userID int32, token string) (utils.SessionData, error)
}

// SessionMiddleware resolves the user_id and session_token cookies to a stored
// session and rejects the request unless the pair matches an unexpired row.
func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idCookie, err := r.Cookie("user_id")
			if err != nil {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}
			tokenCookie, err := r.Cookie("session_token")
			if err != nil {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}

			userID, err := strconv.ParseInt(idCookie.Value, 10, 32)
			if err != nil {
				http.Error(w, "Invalid Session", http.StatusUnauthorized)
				return
			}

			session, err := fetcher.FindSession(int32(userID), tokenCookie.Value)
			if err != nil {
				http.Error(w, "Couldn't find session", http.StatusUnauthorized)
				return
			}

			if session.ExpiryDate < time.Now().UnixMilli() {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), utils.ContextUserIDKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var allowed = map[string]struct{}{
	"http://localhost:5173":          {},
	"http://localhost:5174":          {},
	"https://interniverse.app":       {},
	"https://dev.interniverse.app":   {},
	"https://interniverse.github.io": {},
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it’s on our allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin") // important for caches
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
