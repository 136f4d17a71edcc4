package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/consigntrack/consignment-tracker/internal/api/handler"
	"github.com/consigntrack/consignment-tracker/internal/api/middleware"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

// RouterDeps carries the constructed collaborators the router wires into
// handlers.
type RouterDeps struct {
	Shipments ports.ShipmentService
	Auth      ports.AuthService
	// Webhook is nil when the bot runs in polling mode or is disabled, in
	// which case the webhook route is not registered at all.
	Webhook   *handler.WebhookHandler
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tracker"))

	// --- Handlers ---
	shipmentHandler := handler.NewShipmentHandler(deps.Shipments)
	authHandler := handler.NewAuthHandler(deps.Auth)
	adminOnly := middleware.Auth(deps.JWTSecret)

	// --- Auth ---
	e.POST("/auth/login", authHandler.Login)

	// --- Public tracking + subscription routes ---
	e.GET("/v1/shipments/:tracking_number", shipmentHandler.Get)
	e.POST("/v1/shipments/:tracking_number/subscribe", shipmentHandler.Subscribe)
	e.GET("/v1/shipments/:tracking_number/unsubscribe", shipmentHandler.Unsubscribe)

	// --- Admin routes ---
	admin := e.Group("/v1", adminOnly)
	admin.GET("/shipments", shipmentHandler.List)
	admin.POST("/shipments", shipmentHandler.Create)
	admin.POST("/shipments/:tracking_number/checkpoints", shipmentHandler.AddCheckpoint)
	admin.POST("/shipments/:tracking_number/remove_subscriber", shipmentHandler.RemoveSubscriber)
	admin.POST("/shipments/:tracking_number/simulate", shipmentHandler.Simulate)

	// --- Bot webhook (push front-end) ---
	if deps.Webhook != nil {
		e.POST("/telegram/webhook/:token", deps.Webhook.Receive)
	}

	// --- Health probes + observability ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
