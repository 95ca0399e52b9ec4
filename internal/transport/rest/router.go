package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codespire/finance-backend/internal/budget"
	"github.com/codespire/finance-backend/internal/chat"
	"github.com/codespire/finance-backend/internal/transaction"
	"github.com/codespire/finance-backend/internal/transport/middleware"
	"github.com/codespire/finance-backend/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, budgetHandler *budget.Handler, transactionHandler *transaction.Handler, chatHandler *chat.Handler, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: strings.Split(allowedOrigins, ","),
	}))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if budgetHandler != nil {
			r.Route("/budget", func(br chi.Router) {
				br.Post("/", budgetHandler.GenerateBudget)    // POST /budget
				br.Get("/", budgetHandler.GetLatestBudget)    // GET /budget
				br.Get("/history", budgetHandler.GetHistory)  // GET /budget/history
			})
		}

		if chatHandler != nil {
			r.Post("/chat", chatHandler.Chat)
		}

		if transactionHandler != nil {
			r.Route("/transactions", func(tr chi.Router) {
				tr.Get("/", transactionHandler.ListTransactions)  // GET /transactions
				tr.Post("/upload", transactionHandler.UploadCSV)  // POST /transactions/upload
			})
		}
	})
}
