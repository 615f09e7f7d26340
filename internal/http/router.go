package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/sponsored-events/internal/idempotency"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/rateLimit"
)

// RouterOptions carries the optional middleware dependencies. A nil
// RateLimiter disables rate limiting.
type RouterOptions struct {
	RateLimiter *rateLimit.RateLimiter
	RateLimit   int
	RatePeriod  time.Duration
	Idempotency *idempotency.Idempotency
}

func SetupRouter(h *Handlers, sessions *Sessions, logger observability.Logger, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(sessions))
		if opts.RateLimiter != nil {
			r.Use(RateLimitMiddleware(opts.RateLimiter, opts.RateLimit, opts.RatePeriod))
		}
		if opts.Idempotency != nil {
			r.Use(IdempotencyMiddleware(opts.Idempotency))
		}

		r.Post("/v1/consumers", h.RegisterConsumer)
		r.Post("/v1/organisers", h.RegisterOrganiser)
		r.Post("/v1/sessions", h.Login)
		r.Delete("/v1/sessions", h.Logout)
		r.Put("/v1/profile/consumer", h.UpdateConsumerProfile)
		r.Put("/v1/profile/organiser", h.UpdateOrganiserProfile)

		r.Post("/v1/events", h.CreateEvent)
		r.Get("/v1/events", h.ListEvents)
		r.Post("/v1/events/{id}/performances", h.AddPerformance)
		r.Post("/v1/events/{id}/cancel", h.CancelEvent)
		r.Get("/v1/events/{id}/bookings", h.ListEventBookings)
		r.Get("/v1/events/{id}/performances/{pid}/tickets", h.AvailableTickets)

		r.Post("/v1/bookings", h.BookEvent)
		r.Get("/v1/bookings", h.ListConsumerBookings)
		r.Post("/v1/bookings/{id}/cancel", h.CancelBooking)

		r.Get("/v1/sponsorships", h.ListSponsorshipRequests)
		r.Post("/v1/sponsorships/{id}/respond", h.RespondSponsorship)

		r.Get("/v1/reports/consumers", h.GovernmentReport)
		r.Get("/v1/outcomes", h.ListOutcomes)
	})

	return r
}
