package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"logboard/backend/config"
	"logboard/backend/database"
	"logboard/backend/handlers"
	"logboard/backend/logger"
	"logboard/backend/middleware"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	if err := config.Load(); err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := database.Init(config.C.DatabasePath); err != nil {
		log.Fatal("Failed to init database:", err)
	}

	middleware.InitSession()

	if err := handlers.InitCrypto(); err != nil {
		log.Fatal("Failed to init crypto:", err)
	}

	// Seed the fixed owner and the System page, then route the server's
	// own structured logs into the log table it serves.
	user, err := database.SeedUser()
	if err != nil {
		log.Fatal("Failed to seed user:", err)
	}
	systemPage, err := database.SystemPage(user.ID)
	if err != nil {
		log.Fatal("Failed to seed system page:", err)
	}
	slog.SetDefault(slog.New(logger.NewDBHandler(database.DB, systemPage.ID, user.ID)))
	go logger.CleanupOldLogs(database.DB, systemPage.ID, config.C.Logs.Retention)

	ingestLimiter := middleware.NewRateLimiter(config.C.Logs.IngestRateLimit, time.Minute)

	mux := http.NewServeMux()

	// Health check (unauthenticated, for load balancers)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Page routes
	mux.HandleFunc("GET /pages", middleware.RequireWebAuth(handlers.ListPages))
	mux.HandleFunc("POST /pages", handlers.CreatePage)
	mux.HandleFunc("GET /pages/{id}", handlers.GetPage)
	mux.HandleFunc("PUT /pages/{id}", handlers.UpdatePage)
	mux.HandleFunc("DELETE /pages/{id}", handlers.DeletePage)
	mux.HandleFunc("DELETE /pages/delete-all", handlers.DeleteAllPages)

	// Log routes
	mux.HandleFunc("GET /logs", handlers.ListLogs)
	mux.HandleFunc("POST /logs", ingestLimiter.LimitFunc(middleware.RequireAPIKey(handlers.CreateLog)))
	mux.HandleFunc("DELETE /logs", handlers.DeleteLog)

	// Analytics routes
	mux.HandleFunc("GET /logs/analytics", handlers.GetLogAnalytics)
	mux.HandleFunc("GET /logs/anomalies", handlers.GetLogAnomalies)
	mux.HandleFunc("GET /logs/patterns", handlers.GetLogPatterns)
	mux.HandleFunc("GET /logs/performance", handlers.GetLogPerformance)

	// Wrap all routes with security headers
	handler := middleware.SecurityHeaders(mux)

	slog.Info("server starting", "source", "main", "listen", config.C.Listen)
	log.Fatal(http.ListenAndServe(config.C.Listen, handler))
}
