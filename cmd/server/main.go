/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the compliance engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize structured logging (zap)
  3. Initialize SQLite store
  4. Optionally seed built-in category rule sets
  5. Wire the engine and API handler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: compliance.db, env DB_PATH)
           Use ":memory:" for an in-memory database
  -seed    Seed built-in category rule sets on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/compliance.db" -seed
  ./server -db=":memory:" -port=3000

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
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/warp/compliance-engine/api"
	"github.com/warp/compliance-engine/calendar"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/factory"
	"github.com/warp/compliance-engine/store/sqlite"
)

func main() {
	// .env is optional; flags take their defaults from it.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "compliance.db"), "SQLite database path")
	seed := flag.Bool("seed", false, "Seed built-in category rule sets on startup")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	if *seed {
		seedRuleSets(logger, store)
	}

	// Recurring company holidays; deployments extend via their own calendars.
	holidays, err := calendar.NewRecurring(
		"FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1",   // New Year
		"FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", // Christmas
	)
	if err != nil {
		logger.Fatal("failed to build holiday calendar", zap.Error(err))
	}

	eng := engine.New(store, store, store,
		engine.WithScheduleStore(store),
		engine.WithCalendar(holidays),
	)

	handler := api.NewHandler(eng, store, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", *port), zap.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// seedRuleSets loads the built-in category presets. Re-seeding an already
// seeded database is harmless: the unique version constraint rejects
// duplicates and the startup continues.
func seedRuleSets(logger *zap.Logger, store *sqlite.Store) {
	presets, err := factory.BuiltIn(time.Now().Format("2006-01-02"))
	if err != nil {
		logger.Fatal("failed to build preset rule sets", zap.Error(err))
	}
	ctx := context.Background()
	for _, rs := range presets {
		if err := store.CreateRuleSet(ctx, rs); err != nil {
			if strings.Contains(err.Error(), "UNIQUE") {
				continue
			}
			logger.Warn("failed to seed rule set",
				zap.String("id", string(rs.ID)), zap.Error(err))
			continue
		}
		logger.Info("seeded rule set",
			zap.String("id", string(rs.ID)), zap.String("category", string(rs.Category)))
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
