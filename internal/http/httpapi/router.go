// Package httpapi wires the handlers into the chi router.
package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"storycanvas/internal/http/handlers"
	"storycanvas/internal/infra"
	"storycanvas/internal/middleware"
)

func NewRouter(cfg *infra.Config, app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(*app.Log))
	r.Use(middleware.Session)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

			r.Post("/scenes/generate", app.GenerateScene)

			r.Route("/images/{id}", func(r chi.Router) {
				r.Post("/regenerate", app.RegenerateImage)
				r.Post("/upscale", app.UpscaleImage)
				r.Post("/background", app.RemoveBackground)
				r.Post("/edit", app.EditImage)
			})

			r.Post("/rewrite/scene", app.RewriteScene)
			r.Post("/rewrite/edit", app.RewriteEditInstruction)
		})

		r.Get("/gallery", app.ListGallery)
		r.Delete("/gallery/{id}", app.DeleteImage)

		r.Get("/session", app.SessionStatus)
		r.Post("/session/unlock", app.UnlockSession)
	})

	return r
}
