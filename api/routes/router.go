package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/eventdesk-backend/api/controllers"
	quotecontrollers "github.com/angelmondragon/eventdesk-backend/api/controllers/quotes"
	"github.com/angelmondragon/eventdesk-backend/api/middleware"
	"github.com/angelmondragon/eventdesk-backend/internal/quotes"
	"github.com/angelmondragon/eventdesk-backend/pkg/config"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
	"github.com/angelmondragon/eventdesk-backend/pkg/redis"
)

// Dependencies bundles what the HTTP surface needs. Nil optional members are skipped.
type Dependencies struct {
	DB           controllers.Pinger
	Redis        redis.IdempotencyStore
	RedisPinger  controllers.Pinger
	Quotes       quotes.Service
	MetricsRoute http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["db"] = deps.DB
	}
	if deps.RedisPinger != nil {
		readiness["redis"] = deps.RedisPinger
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if deps.MetricsRoute != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsRoute)
	}

	var idempotencyStore redis.IdempotencyStore
	if cfg.FeatureFlags.Idempotency {
		idempotencyStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		standard := middleware.Idempotent(idempotencyStore, logg, middleware.StandardReplayTTL)
		decision := middleware.Idempotent(idempotencyStore, logg, middleware.DecisionReplayTTL)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", quotecontrollers.List(deps.Quotes, logg))
			r.With(standard).Post("/", quotecontrollers.Create(deps.Quotes, logg))

			r.Route("/{quoteId}", func(r chi.Router) {
				r.Get("/", quotecontrollers.Detail(deps.Quotes, logg))
				r.Patch("/", quotecontrollers.UpdateFields(deps.Quotes, logg))
				r.With(standard).Post("/lines", quotecontrollers.AddLine(deps.Quotes, logg))
				r.Delete("/lines/{lineId}", quotecontrollers.RemoveLine(deps.Quotes, logg))
				r.With(standard).Post("/send", quotecontrollers.Send(deps.Quotes, logg))
				r.With(standard).Post("/review", quotecontrollers.Review(deps.Quotes, logg))
				r.With(decision).Post("/accept", quotecontrollers.Accept(deps.Quotes, logg))
				r.With(decision).Post("/refuse", quotecontrollers.Refuse(deps.Quotes, logg))
				r.With(standard).Post("/request-modification", quotecontrollers.RequestModification(deps.Quotes, logg))
				r.With(standard).Post("/revise", quotecontrollers.Revise(deps.Quotes, logg))
				r.Get("/document", quotecontrollers.Document(deps.Quotes, logg))
			})
		})
	})

	return r
}
