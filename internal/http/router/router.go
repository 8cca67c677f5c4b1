package router

import (
	"net/http"

	"github.com/diagnosis/luxstay/internal/booking"
	"github.com/diagnosis/luxstay/internal/http/handlers"
	httpmw "github.com/diagnosis/luxstay/internal/http/middleware"
	"github.com/diagnosis/luxstay/internal/messaging"
	"github.com/diagnosis/luxstay/internal/session"
	mw "github.com/diagnosis/luxstay/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Deps struct {
	Sessions    *session.Service
	Bookings    booking.Manager
	Inbox       *messaging.Inbox
	CORSOrigins []string
	// LoginLimiter wraps login and register; nil disables limiting.
	LoginLimiter *httpmw.RateLimiter
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("luxstay"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var limit func(http.Handler) http.Handler
	if d.LoginLimiter != nil {
		limit = d.LoginLimiter.Middleware()
	}

	// Inbox state belongs to whoever is signed in.
	d.Sessions.OnChange(d.Inbox.Reset)

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/session", handlers.NewSessionHandler(d.Sessions).Routes(limit))

		r.Group(func(r chi.Router) {
			r.Use(httpmw.RequireSession(d.Sessions.Holder()))
			r.Mount("/bookings", handlers.NewBookingHandler(d.Bookings).Routes())
			r.Mount("/host", handlers.NewHostHandler(d.Bookings).Routes())
			r.Mount("/messages", handlers.NewMessageHandler(d.Inbox).Routes())
		})
	})

	return r
}
