package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"calltimes/config"
	"calltimes/internal/adapters/auth"
	"calltimes/internal/adapters/email"
	"calltimes/internal/adapters/storage"
	"calltimes/internal/authz"
	delivery "calltimes/internal/delivery/http"
	"calltimes/internal/delivery/http/controllers"
	"calltimes/internal/delivery/http/middleware"
	"calltimes/internal/repository/postgres"
	"calltimes/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

// @title calltimes API
// @version 1.0
// @description Project collaboration API: organizations, invitations, and role-gated project content.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	db, err := connectDB(cfg.DBUrl)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database connection", "err", err)
		}
	}()
	logger.Info("database connection established")

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    mailerProvider(cfg),
		FromAddress: cfg.EmailFrom,
		FromName:    "calltimes",
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to initialize mailer", "err", err)
		os.Exit(1)
	}

	blobStore, err := storage.NewS3BlobStore(storage.S3Config{
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Bucket:          cfg.S3Bucket,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize blob storage", "err", err)
		os.Exit(1)
	}

	// Repositories
	identityRepo := postgres.NewIdentityRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	memberRepo := postgres.NewProjectMemberRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	guestRepo := postgres.NewGuestIdentityRepository(db)
	contentRepo := postgres.NewContentRepository(db)

	// Access control
	resolver := authz.NewAccessResolver(orgRepo, projectRepo, memberRepo)
	gate := authz.NewGateway(resolver)

	// Adapters
	hasher := auth.NewBcryptHasher(12)
	tokenCodec := auth.NewJWTCodec(cfg.JWTSecret)
	renderer := email.NewTemplateRenderer()

	// Services
	emailService := services.NewEmailService(mailer, renderer, logger)
	provisioner := services.NewGuestProvisioner(identityRepo, guestRepo)
	authService := services.NewAuthService(identityRepo, orgRepo, hasher, tokenCodec, cfg.TokenExpiry)
	projectService := services.NewProjectService(projectRepo, memberRepo, resolver, gate, serviceTimeout)
	invitationService := services.NewInvitationService(
		invitationRepo, memberRepo, identityRepo, projectRepo,
		provisioner, gate, emailService,
		cfg.AppOrigin, logger, serviceTimeout,
	)
	contentService := services.NewContentService(contentRepo, blobStore, gate, logger, serviceTimeout)

	// HTTP delivery
	authController := controllers.NewAuthController(logger, authService)
	projectController := controllers.NewProjectController(logger, projectService)
	invitationController := controllers.NewInvitationController(logger, invitationService, tokenCodec, cfg.TokenExpiry)
	contentController := controllers.NewContentController(logger, contentService)

	mux := delivery.NewRouter(tokenCodec, authController, projectController, invitationController, contentController)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS([]string{cfg.AppOrigin}, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", "err", closeErr)
			}
		}
	}
	logger.Info("server stopped")
}

func connectDB(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// mailerProvider selects SES when credentials are configured and falls back
// to the noop mailer for local development.
func mailerProvider(cfg *config.Config) string {
	if cfg.AWSAccessKeyID != "" && cfg.EmailFrom != "" {
		return "ses"
	}
	return "noop"
}
