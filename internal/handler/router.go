package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvasquez/persona-sim/internal/handler/persona"
	"github.com/mvasquez/persona-sim/internal/handler/simulation"
	middlewarePkg "github.com/mvasquez/persona-sim/internal/middleware"
	personaModel "github.com/mvasquez/persona-sim/internal/model/persona"
	simservice "github.com/mvasquez/persona-sim/internal/service/simulation"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, simSvc *simservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(personas)
	simulationHandler := simulation.New(simSvc)
	wsHandler := simulation.NewWebSocketHandler(simSvc)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		simulationHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
