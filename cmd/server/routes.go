package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
)

type routes struct {
	ws      http.HandlerFunc
	healthz http.HandlerFunc
	metrics http.Handler
	auth    func(http.Handler) http.Handler
	refresh http.HandlerFunc
	alerts  http.HandlerFunc

	origins   []string
	staticDir string
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// CORS sits on the top-level router so preflight requests are answered
	// before chi's method matching.
	r.Use(cors(rt.origins))

	// WebSocket (Real-time)
	r.Get("/ws", rt.ws)

	r.Get("/healthz", rt.healthz)
	r.Handle("/metrics", rt.metrics)

	// Protected Routes (Require ops JWT)
	r.Group(func(r chi.Router) {
		r.Use(rt.auth)
		r.Post("/api/feed/refresh", rt.refresh)
		r.Get("/api/alerts", rt.alerts)
	})

	if rt.staticDir != "" {
		r.Handle("/*", handlers.CompressHandler(http.FileServer(http.Dir(rt.staticDir))))
	}
	return r
}

func cors(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
}
