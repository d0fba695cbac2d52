package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/gringo-delivery/backend/internal/router"
	"github.com/gringo-delivery/backend/internal/sse"
	"github.com/gringo-delivery/backend/internal/tasks"
	"github.com/gringo-delivery/backend/pkg/config"
	"github.com/gringo-delivery/backend/pkg/firebase"
	"github.com/gringo-delivery/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Initialize the database connection (also loads .env)
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Firebase
	fbApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)

	// Event hub for server-sent events
	hub := sse.NewHub()

	// Background sweep that expires stale pending notifications
	sweeper := tasks.NewExpirySweeper(
		repositories.NewMongoNotificationRepository(mongoDB),
		cfg.SweepInterval,
	)
	go sweeper.Run(ctx)

	// Prometheus metrics on a separate port
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("Metrics server starting on port %s", cfg.MetricsPort)
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// Initialize Echo
	e := echo.New()
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e)
	router.SetupRoutes(e, mongoDB, fbApp, hub, cfg)

	// Start the server
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Shutting down the server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully.")
}
