package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("quickshow-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)

	// The webhook route skips session middleware: Stripe carries no cookie
	// and signature verification needs the raw body untouched.
	r.Post("/webhooks/payment", app.StripeWebhookHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)

		r.Get("/health", app.GetHealth)

		r.Get("/movies", app.GetMovies)
		r.Get("/movies/{movieId}", app.GetMovieDetails)
		r.Get("/movies/{movieId}/shows", app.GetShowsByMovie)
		r.Get("/shows/{showId}/seats", app.GetOccupiedSeats)

		r.Post("/users", app.RegisterUser)
		r.Post("/auth/login", app.Login)
		r.Post("/auth/logout", app.Logout)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication)

			r.Post("/bookings", app.CreateBookingHandler)
			r.Get("/users/me", app.GetCurrentUser)
			r.Get("/users/me/bookings", app.GetUserBookingsHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.requireAuthentication)
			r.Use(app.requireAdmin)

			r.Get("/dashboard", app.GetDashboard)
			r.Get("/bookings", app.GetAllBookingsHandler)
			r.Get("/shows", app.GetAllShowsHandler)

			r.Post("/movies", app.CreateMovie)
			r.Patch("/movies/{movieId}", app.UpdateMovie)
			r.Delete("/movies/{movieId}", app.DeleteMovie)
			r.Patch("/movies/{movieId}/now-playing", app.ToggleMovieNowPlaying)

			r.Post("/movies/{movieId}/shows", app.CreateShow)
			r.Delete("/shows/{showId}", app.DeleteShow)
			r.Patch("/shows/{showId}/active", app.ToggleShowActive)
		})
	})

	return r
}
