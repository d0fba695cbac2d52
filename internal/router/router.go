package router

import (
	"github.com/gringo-delivery/backend/internal/handlers"
	appmiddleware "github.com/gringo-delivery/backend/internal/middleware"
	"github.com/gringo-delivery/backend/internal/pricing"
	"github.com/gringo-delivery/backend/internal/push"
	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/gringo-delivery/backend/internal/services"
	"github.com/gringo-delivery/backend/internal/sse"
	"github.com/gringo-delivery/backend/pkg/config"
	"github.com/gringo-delivery/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures the global middleware for the Echo instance
func SetupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
}

// SetupRoutes wires the repositories, services and handlers and registers
// every route on the Echo instance
func SetupRoutes(e *echo.Echo, db *mongo.Database, fbApp *firebase.App, hub *sse.Hub, cfg *config.Config) {
	// Repositories
	notificationRepo := repositories.NewMongoNotificationRepository(db)
	motoboyRepo := repositories.NewMongoMotoboyRepository(db)
	storeRepo := repositories.NewMongoStoreRepository(db)
	supportTeamRepo := repositories.NewMongoSupportTeamRepository(db)
	orderRepo := repositories.NewMongoOrderRepository(db)

	// Domain services
	pricingEngine := pricing.NewEngine(pricing.Config{
		BaseCost:             cfg.PricingBaseCost,
		IncludedKm:           cfg.PricingIncludedKm,
		CostPerExtraKm:       cfg.PricingCostPerExtraKm,
		CostPerExtraStop:     cfg.PricingCostPerExtraStop,
		RainMultiplier:       cfg.PricingRainMultiplier,
		HighDemandMultiplier: cfg.PricingHighDemandMultiplier,
	})
	pusher := push.NewFCMSender(fbApp.MessagingClient)
	notificationService := services.NewNotificationService(
		notificationRepo,
		motoboyRepo,
		storeRepo,
		supportTeamRepo,
		orderRepo,
		pusher,
		hub,
	)

	// Handlers
	notificationHandler := handlers.NewNotificationHandler(notificationService, notificationRepo, hub)
	orderHandler := handlers.NewOrderHandler(orderRepo, motoboyRepo, pricingEngine, notificationService, hub)
	motoboyHandler := handlers.NewMotoboyHandler(motoboyRepo)
	storeHandler := handlers.NewStoreHandler(storeRepo)
	supportHandler := handlers.NewSupportHandler(supportTeamRepo)
	eventsHandler := handlers.NewEventsHandler(hub)

	// Public routes
	e.GET("/health", handlers.HealthCheck)

	// API routes protected by Firebase authentication
	api := e.Group("/api/v1")
	api.Use(appmiddleware.FirebaseAuthMiddleware(fbApp.AuthClient))

	notificationHandler.RegisterNotificationRoutes(api)
	orderHandler.RegisterOrderRoutes(api)
	motoboyHandler.RegisterMotoboyRoutes(api)
	storeHandler.RegisterStoreRoutes(api)
	supportHandler.RegisterSupportRoutes(api)
	eventsHandler.RegisterEventRoutes(api)
}
