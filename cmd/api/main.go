// @title        Admin Console API
// @version      1.0
// @description  Staff directory, activity log, messaging and notifications for the admin console.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/doomzday403/admin-console/internal/api"
	"github.com/doomzday403/admin-console/internal/core/ports"
	"github.com/doomzday403/admin-console/internal/core/service"
	"github.com/doomzday403/admin-console/internal/infrastructure/db/memory"
	"github.com/doomzday403/admin-console/internal/infrastructure/db/mongo"
	"github.com/doomzday403/admin-console/internal/infrastructure/db/redis"
	"github.com/doomzday403/admin-console/internal/infrastructure/http/handlers"
	"github.com/doomzday403/admin-console/internal/infrastructure/queue"
	"github.com/doomzday403/admin-console/internal/pkg/config"
	"github.com/doomzday403/admin-console/pkg/logger"
)

const devJWTSecret = "dev-secret-change-me"

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "api",
	})

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checkers []handlers.Checker
	backends := service.Backends{}

	// --- Entity storage ---
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer disconnectMongo(client, log)

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to create mongodb indexes")
		}
		backends.Staff = mongo.NewStaffRepository(db)
		backends.Activity = mongo.NewActivityRepository(db)
		backends.Messages = mongo.NewMessageRepository(db)
		backends.Notifications = mongo.NewNotificationRepository(db)
		checkers = append(checkers, handlers.MongoChecker(db))
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongodb store")
	default:
		backends.Staff = memory.NewStaffRepository()
		backends.Activity = memory.NewActivityRepository()
		backends.Messages = memory.NewMessageRepository()
		backends.Notifications = memory.NewNotificationRepository()
		log.Info().Msg("using in-memory store")
	}

	// --- Reset tokens and throttle ---
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer closeRedis(rdb, log)

		backends.ResetTokens = redis.NewResetTokenStore(rdb)
		backends.ResetThrottle = redis.NewResetThrottle(rdb, cfg.Reset.ThrottleWindow)
		checkers = append(checkers, handlers.RedisChecker(rdb))
	} else {
		backends.ResetTokens = memory.NewResetTokenStore()
		backends.ResetThrottle = memory.NewResetThrottle(cfg.Reset.ThrottleWindow)
	}

	// --- Mail ---
	var sender ports.MailSender = queue.NewLogSender(log.With().Str("component", "mail").Logger())
	if cfg.RabbitMQ.URL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open rabbitmq channel")
		}
		defer ch.Close()

		publisher, err := queue.NewAMQPPublisher(ch)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to declare mail queue")
		}
		sender = publisher
		checkers = append(checkers, handlers.CheckFunc{Dependency: "rabbitmq", Fn: func(context.Context) error {
			if conn.IsClosed() {
				return amqp.ErrClosed
			}
			return nil
		}})
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, sender, log.With().Str("component", "mail").Logger())
	dispatcher.Start(workerCtx)
	backends.Mail = dispatcher

	// --- Seed ---
	if err := service.Seed(ctx, backends, cfg.SeedAdminPassword, time.Now().UTC(), log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed store")
	}

	// --- Sessions ---
	opts := service.Options{Latency: cfg.SimulatedLatency, ResetTokenTTL: cfg.Reset.TokenTTL}
	registry := service.NewRegistry(backends, opts, cfg.Session.IdleTimeout, log)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		registry.Run(ctx, cfg.Session.SweepInterval)
	}()

	e := api.NewRouter(api.Deps{
		Sessions:  registry,
		Tokens:    service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		JWTSecret: cfg.JWTSecret,
		Checkers:  checkers,
		Log:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	<-sweepDone
	cancelWorkers()
	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
}

func disconnectMongo(client *mongodriver.Client, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect failed")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}
