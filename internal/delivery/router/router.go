package router

import (
	"advertisement-service/internal/delivery/handler"
	"advertisement-service/internal/delivery/middleware"
	"advertisement-service/internal/infrastructure/metrics"
	"advertisement-service/internal/service"
	"advertisement-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the full HTTP surface: middleware, advertisement routes,
// health and metrics.
func NewRouter(adService service.AdService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(loggers))
	r.Use(chimiddleware.Recoverer)

	SetupAdRoutes(r, adService, loggers, metrics)
	r.Handle("/metrics", metrics.HTTPHandler())

	return r
}

func SetupAdRoutes(adRouter chi.Router, adService service.AdService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) {
	adHandler := handler.NewAdHandler(adService, loggers, metrics)

	adRouter.Get("/health", adHandler.Health)

	adRouter.Get("/advertisement", adHandler.SearchAds)
	adRouter.Post("/advertisement", adHandler.CreateAd)
	adRouter.Get("/advertisement/{id}", adHandler.GetAdByID)
	adRouter.Patch("/advertisement/{id}", adHandler.UpdateAd)
	adRouter.Delete("/advertisement/{id}", adHandler.DeleteAd)
}
