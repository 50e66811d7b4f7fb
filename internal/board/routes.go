package board

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/interniverse/backend/internal/auth"
	"github.com/interniverse/backend/internal/middleware"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}
	commentThrottle := middleware.NewThrottle(10, 3)

	// Public routes - read-only access to listings and comments
	r.Get("/listings", ListListingsHandler)
	r.Get("/listings/{listing_id}", GetListingHandler)
	r.Get("/listings/{listing_id}/comments", ListCommentsHandler)
	r.Get("/listings/{listing_id}/rating", RatingHandler)

	// Mutations require a valid session
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))

		r.Post("/listings", CreateListingHandler)

		r.Group(func(r chi.Router) {
			r.Use(commentThrottle.Middleware)
			r.Post("/listings/{listing_id}/comments", CreateCommentHandler)
		})
	})

	return r
}
