package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	ledgerHandler "github.com/ongweikiat/moolah/internal/http/ledger"
)

// New assembles the API router. An empty authSecret disables auth, which is
// the default for a local single-user install.
func New(ledgerV1 *ledgerHandler.Handler, authSecret string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		if authSecret != "" {
			r.Use(BearerAuth(authSecret))
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.TransactionRoutes(r)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.BudgetRoutes(r)
		})

		r.Route("/goal", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			ledgerV1.GoalRoutes(r)
		})

		r.Get("/alerts", ledgerV1.Alerts)
	})

	return router
}
