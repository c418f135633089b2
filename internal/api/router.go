package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Intent routes
		r.Post("/login", apiHandler.LoginHandler)
		r.Post("/logout", apiHandler.LogoutHandler)
		r.Post("/navigate", apiHandler.NavigateHandler)
		r.Post("/chat/messages", apiHandler.SubmitMessageHandler)

		// Snapshot routes
		r.Get("/state", apiHandler.StateHandler)
		r.Get("/state/stream", apiHandler.StreamHandler)
		r.Get("/chat", apiHandler.ChatHandler)
	})

	return r
}
