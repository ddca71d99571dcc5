package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/admission"
	"github.com/noah-isme/paperdrop-api/internal/auth"
	"github.com/noah-isme/paperdrop-api/internal/config"
	"github.com/noah-isme/paperdrop-api/internal/database"
	"github.com/noah-isme/paperdrop-api/internal/events"
	"github.com/noah-isme/paperdrop-api/internal/handler"
	"github.com/noah-isme/paperdrop-api/internal/middleware"
	"github.com/noah-isme/paperdrop-api/internal/repository"
	"github.com/noah-isme/paperdrop-api/internal/router"
	"github.com/noah-isme/paperdrop-api/internal/service"
	"github.com/noah-isme/paperdrop-api/internal/utils"
	cloud "github.com/noah-isme/paperdrop-api/pkg/cloudinary"
	"github.com/noah-isme/paperdrop-api/pkg/mailer"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "paperdrop-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx := context.Background()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		limiterStorage = middleware.NewRedisStorage(redisClient, "paperdrop:ratelimit:")
	} else {
		logger.Warn().Msg("redis url not set, rate limit counters are kept in memory")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		conn, err := events.Connect(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		publisher = events.NewNATS(conn, "paperdrop", logger)
	}
	defer publisher.Close()

	store, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cloudinary client")
	}

	var outbound mailer.Mailer
	if cfg.SendGridAPIKey != "" {
		outbound = mailer.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom, logger)
	} else {
		logger.Warn().Msg("sendgrid api key not set, submission emails are only logged")
		outbound = mailer.NewLog(logger)
	}

	policy, err := admission.PolicyFor(cfg.FilenamePolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid filename policy")
	}
	filter := admission.NewFilter(policy, cfg.MaxFileBytes(), cfg.VerifyContent)

	validate := utils.NewValidator()
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpires, cfg.AppName)

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	notifier := service.NewMailNotifier(outbound, mailer.ParseRecipients(cfg.MailTo), logger)
	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, validate, publisher, logger)
	submissionService := service.NewSubmissionService(filter, assignmentRepo, submissionRepo, store, notifier, publisher, logger)
	statsService := service.NewStatsService(userRepo, assignmentRepo, submissionRepo)

	if created, err := authService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to create bootstrap admin")
	} else if created {
		logger.Info().Str("email", cfg.AdminEmail).Msg("bootstrap admin created")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.RequestBodyLimit(),
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{
		Logger:        &logger,
		AccessLog:     cfg.AppEnv == "development",
		JSONBodyLimit: cfg.JSONBodyLimit(),
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, statsService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, submissionService, statsService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		Authenticate:      middleware.Authenticate(tokens, userRepo),
		RateLimit:         middleware.IPRateLimit("api", cfg.RateLimitMax, cfg.RateLimitWindow, limiterStorage),
		UserRateLimit:     middleware.RateLimit("api-user", cfg.RateLimitMax, cfg.RateLimitWindow, limiterStorage),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("filename_policy", policy.Name).Msg("server started")
	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
