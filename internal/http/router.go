package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/MrJamesThe3rd/caixa/internal/http/catalog"
	"github.com/MrJamesThe3rd/caixa/internal/http/importcsv"
	"github.com/MrJamesThe3rd/caixa/internal/http/till"
)

// Options tune the middleware stack.
type Options struct {
	AuthSecret string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
	Timeout   time.Duration
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func New(
	opts Options,
	tillV1 *till.Handler,
	catalogV1 *catalog.Handler,
	importV1 *importcsv.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.RateLimit > 0 {
		router.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate(opts.AuthSecret))

		r.Route("/terminals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			tillV1.Routes(r)
		})

		catalogV1.Routes(r)

		r.Route("/products/import", importV1.Routes)
	})

	return router
}
