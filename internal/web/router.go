package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ayush/research-intelligence/internal/middleware"
	"github.com/ayush/research-intelligence/internal/session"
)

// Options configures NewRouter.
type Options struct {
	Registry       *session.Registry
	SessionTTL     time.Duration
	SubmitLimiter  *rate.Limiter // nil disables throttling
	AllowedOrigins []string
	Sanitize       bool
	Log            *logrus.Entry
}

func NewRouter(opts Options) http.Handler {
	h := NewHandler(opts.Log, opts.Sanitize)
	withSession := middleware.Session(opts.Registry, opts.SessionTTL, opts.Log)
	throttle := middleware.Throttle(opts.SubmitLimiter)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(opts.Log))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(withSession)
		r.Get("/", h.Index)
		r.With(throttle).Post("/submit", h.Submit)
		r.Post("/notifications/{id}/dismiss", h.Dismiss)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(withSession)
		r.Get("/state", h.State)
		r.With(throttle).Post("/submit", h.APISubmit)
		r.Delete("/notifications/{id}", h.DismissNotification)
	})

	return r
}
