package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/memora-app/memora/internal/web/handlers"
	"github.com/memora-app/memora/internal/web/middleware"
)

func (s *Server) setupRoutes(deps Dependencies) {
	identitiesHandler := handlers.NewIdentitiesHandler(deps.IdentityReader, deps.IdentityWriter, deps.Index)
	trainingHandler := handlers.NewTrainingHandler(deps.Generator, deps.Tracker)
	cuesHandler := handlers.NewCuesHandler(deps.IdentityReader, deps.Cues)

	// Health check (no user scope required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserScope)

		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Post("/identities", identitiesHandler.Create)
		r.Get("/identities/{id}", identitiesHandler.Get)
		r.Put("/identities/{id}", identitiesHandler.Update)
		r.Delete("/identities/{id}", identitiesHandler.Delete)

		// Training
		r.Post("/training/exercise", trainingHandler.GenerateExercise)
		r.Post("/training/result", trainingHandler.SubmitResult)
		r.Get("/training/progress", trainingHandler.GetProgress)

		// Memory cues
		r.Post("/cues", cuesHandler.Generate)
	})
}
