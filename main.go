package main

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/etudehq/etude-api/internal/api"
	"github.com/etudehq/etude-api/internal/config"
	"github.com/etudehq/etude-api/internal/events"
	"github.com/etudehq/etude-api/internal/library"
	"github.com/etudehq/etude-api/internal/store"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "etude-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            cfg.Environment != environmentProduction,
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
	}

	// Initialize storage: Postgres when configured, embedded badger
	// otherwise.
	var (
		kv  store.Store
		err error
	)
	if cfg.DatabaseURL != "" {
		kv, err = store.NewGormStore(cfg.DatabaseURL)
	} else {
		kv, err = store.NewBadgerStore(store.BadgerOptions{Dir: cfg.DataDir})
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to open storage:", err)
	}

	// Event bus for downstream modules (practice log, goal tracking)
	bus := events.NewBus()
	defer bus.Close()

	// Library orchestrator owns the caches and lifecycle
	lib := library.New(kv, bus, library.WithTTL(cfg.ExerciseTTL))
	defer lib.Close()

	// Periodic expiry sweep
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := lib.SweepExpired(sweepCtx); err != nil {
					sentry.CaptureException(err)
					log.Printf("Expiry sweep failed: %v", err)
				}
			}
		}
	}()

	// Set Gin mode
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(lib, cfg, GetVersion())

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}
