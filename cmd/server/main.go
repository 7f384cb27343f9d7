/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the booking reconciliation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize SQLite store, optionally seed demo data
  3. Build the analyzer and the report cache
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: bookings.db)
              Use ":memory:" for an in-memory database
  -seed       load the demo dataset on startup
  -cache-ttl  report cache lifetime (default: 5m)

ENVIRONMENT:
  REDIS_ADDR  when set, the report cache uses Redis instead of the
              in-process map. Loaded from .env if present.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with the demo dataset in memory
  ./server -db=":memory:" -seed

  # Run against a file database with Redis caching
  REDIS_ADDR=localhost:6379 ./server -db="./data/bookings.db"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alpine/booking-finance/api"
	"github.com/alpine/booking-finance/engine"
	"github.com/alpine/booking-finance/store/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; flags and real env vars win either way.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "bookings.db", "SQLite database path")
	seed := flag.Bool("seed", false, "load the demo dataset on startup")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "report cache lifetime")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if *seed {
		if err := sqlite.Seed(context.Background(), store); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Printf("Seeded demo data for school %q", sqlite.DemoSchoolID)
	}

	analyzer := engine.NewAnalyzer(engine.DefaultConfig())
	cache := api.NewCacheFromEnv(os.Getenv("REDIS_ADDR"))

	handler := api.NewHandler(store, analyzer, cache, *cacheTTL)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
