// Command tracker runs the consignment tracker: the admin/tracking API, the
// checkpoint notification pipeline, and the chat-bot ingestion gateway in
// either polling or webhook mode.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/api"
	"github.com/consigntrack/consignment-tracker/internal/api/handler"
	"github.com/consigntrack/consignment-tracker/internal/bot"
	"github.com/consigntrack/consignment-tracker/internal/core/service"
	mongodb "github.com/consigntrack/consignment-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/consigntrack/consignment-tracker/internal/infrastructure/db/redis"
	"github.com/consigntrack/consignment-tracker/internal/infrastructure/mail"
	"github.com/consigntrack/consignment-tracker/internal/infrastructure/queue"
	"github.com/consigntrack/consignment-tracker/internal/infrastructure/telegram"
	"github.com/consigntrack/consignment-tracker/internal/notify"
	"github.com/consigntrack/consignment-tracker/internal/pkg/config"
	"github.com/consigntrack/consignment-tracker/pkg/logger"
)

const (
	adminTokenTTL   = 2 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		_ = rdb.Close()
	}()

	repo := mongodb.NewShipmentRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure mongodb indexes")
	}

	// --- Pipeline ---
	mailSender := mail.NewSender(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
	notifier := notify.NewDispatcher(
		mailSender,
		redisdb.NewDedupStore(rdb, "notify"),
		cfg.BaseURL,
		cfg.JWTSecret,
		log,
	)
	shipments := service.NewShipmentService(repo, notifier, cfg.JWTSecret, log)

	authService, err := service.NewAuthService(cfg.AdminUser, cfg.AdminPassword, cfg.JWTSecret, adminTokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise auth service")
	}

	// --- Bot ingestion gateway ---
	webhookHandler := startBot(ctx, cfg, shipments, rdb, log)

	// --- HTTP server ---
	e := api.NewRouter(api.RouterDeps{
		Shipments: shipments,
		Auth:      authService,
		Webhook:   webhookHandler,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("consignment tracker started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

// startBot wires the configured ingestion front-end. In polling mode it
// launches the single poller goroutine owning the consumption cursor; in
// webhook mode it starts the worker pool and returns the handler for the
// router to mount. A missing token disables the bot.
func startBot(ctx context.Context, cfg *config.Config, shipments *service.ShipmentService, rdb *redis.Client, log zerolog.Logger) *handler.WebhookHandler {
	if cfg.Telegram.Token == "" {
		log.Info().Msg("no telegram token set, bot disabled")
		return nil
	}

	tg, err := telegram.NewClient(cfg.Telegram.Token, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise telegram client")
	}

	executor := bot.NewExecutor(shipments, cfg.BaseURL, log)
	botHandler := bot.NewHandler(executor, tg, redisdb.NewDedupStore(rdb, "bot"), log)

	if cfg.Telegram.Mode == "webhook" {
		dispatcher := queue.NewDispatcher(cfg.Telegram.Workers, botHandler, log)
		dispatcher.Start(ctx)
		if cfg.Telegram.WebhookURL != "" {
			publicURL := strings.TrimRight(cfg.Telegram.WebhookURL, "/") + "/telegram/webhook/" + cfg.Telegram.Token
			if err := tg.RegisterWebhook(ctx, publicURL); err != nil {
				log.Fatal().Err(err).Msg("failed to register telegram webhook")
			}
		} else {
			log.Warn().Msg("TELEGRAM_WEBHOOK_URL not set, register the webhook with telegram manually")
		}
		log.Info().Int("workers", cfg.Telegram.Workers).Msg("bot running in webhook mode")
		return handler.NewWebhookHandler(cfg.Telegram.Token, dispatcher)
	}

	cursor := redisdb.NewCursorStore(rdb, cfg.Telegram.Token)
	poller := bot.NewPoller(tg, cursor, botHandler, cfg.Telegram.PollInterval, log)
	go poller.Run(ctx)
	log.Info().Dur("interval", cfg.Telegram.PollInterval).Msg("bot running in polling mode")
	return nil
}
