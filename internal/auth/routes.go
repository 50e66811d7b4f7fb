package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/interniverse/backend/internal/middleware"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{}

	r.Post("/register", RegisterHandler)
	r.Post("/login", LoginHandler)
	r.Get("/session", SessionHandler)
	r.Post("/session", SetSessionHandler)
	r.Post("/logout", LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/profile", ProfileHandler)
		r.Post("/password", UpdatePasswordHandler)
	})

	return r
}
