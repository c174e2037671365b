// Package main is the entry point for the bookstore API server.
// It wires together configuration, the database connection, and the HTTP router.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mirahayu/bookstore-api/internal/data"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// appVersion is the current version of the API, shown in logs.
const appVersion = "1.0.0"

// serverConfig holds all the values that can be tweaked at startup.
// Every field has a flag; DSN, port, and JWT secret also fall back to the
// environment (PORT, DB_DSN, JWT_SECRET), loaded from a .env file if present.
type serverConfig struct {
	port        int    // TCP port the HTTP server listens on
	environment string // Runtime environment: development, staging, or production
	db          struct {
		dsn string // PostgreSQL Data Source Name (connection string)
	}
	jwt struct {
		secret string // HMAC secret for signing access tokens
	}
	limiter struct {
		rps     float64 // Sustained requests per second per client IP
		burst   int     // Burst capacity per client IP
		enabled bool    // Disable to make load testing easier
	}
}

// applicationDependencies bundles every shared resource that HTTP handlers need.
// A pointer to this struct is passed as the receiver on all handler and route methods.
type applicationDependencies struct {
	config serverConfig // Server configuration loaded from flags and the environment
	logger *slog.Logger // Structured logger that writes to stdout
	models data.Models  // Database model layer for all tables
}

// main parses configuration, opens the database, wires up dependencies, and
// starts the HTTP server.
func main() {
	// Load a .env file if one exists so local development does not need
	// exported variables. A missing file is not an error.
	_ = godotenv.Load()

	var settings serverConfig

	flag.IntVar(&settings.port, "port", envInt("PORT", 8080), "Server port")
	flag.StringVar(&settings.environment, "env", "development", "Environment(development|staging|production)")
	flag.StringVar(&settings.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.StringVar(&settings.jwt.secret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret")
	flag.Float64Var(&settings.limiter.rps, "limiter-rps", 2, "Rate limiter requests per second")
	flag.IntVar(&settings.limiter.burst, "limiter-burst", 4, "Rate limiter burst")
	flag.BoolVar(&settings.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")

	flag.Parse()

	// Create a structured logger that writes human-readable text to stdout.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if settings.jwt.secret == "" {
		logger.Error("jwt secret must be set via -jwt-secret or JWT_SECRET")
		os.Exit(1)
	}

	// Open and verify the database connection pool.
	db, err := openDB(settings)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	defer db.Close() // Close the pool cleanly when main() returns.

	logger.Info("database connection pool established")

	// Bundle all shared dependencies into a single struct.
	appInstance := &applicationDependencies{
		config: settings,
		logger: logger,
		models: data.NewModels(db),
	}

	err = appInstance.serve()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// envInt reads an integer environment variable, returning fallback when the
// variable is unset or malformed.
func envInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}

// openDB opens a PostgreSQL connection pool using the DSN stored in settings,
// then pings the database with a 5-second timeout to confirm it is reachable.
func openDB(settings serverConfig) (*sql.DB, error) {
	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open("postgres", settings.db.dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// PingContext performs a real round-trip to verify the database is reachable.
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
