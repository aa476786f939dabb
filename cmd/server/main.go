package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/handler"
	"github.com/iliyamo/todo-api/internal/logger"
	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/router"
	"github.com/iliyamo/todo-api/internal/service"
	"github.com/iliyamo/todo-api/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Config{Format: logger.FormatConsole}, "todo-api")
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, "todo-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable; task cache disabled")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tasks := repository.NewTaskRepo(db)

	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	issuer := utils.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)

	// A nil *queue.Publisher must not reach the service as a non-nil interface.
	var publisher service.EventPublisher
	if cfg.Events.Enabled() {
		publisher = queue.NewPublisher(cfg.Events.URL, log)
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.RevokeSessionsOnDelete, tokens, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("user.deleted consumer stopped")
			}
		}()
	} else {
		log.Info().Msg("RABBITMQ_URL not set; user events disabled")
	}

	authSvc := service.NewAuthService(users, tokens, hasher, issuer, log)
	userSvc := service.NewUserService(users, hasher, publisher, log)
	authn := middleware.Authenticate(issuer, tokens)

	e := router.NewEcho(log)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, cfg.IsProduction(), issuer.TTL()), authn)
	router.RegisterAdmin(e, handler.NewAdminUserHandler(userSvc), authn)
	router.RegisterTasks(e, handler.NewTaskHandler(tasks), authn, middleware.NewRedisCache(cfg.Cache, rdb, log))

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
