package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/sports-auction/config"
	"github.com/Dosada05/sports-auction/db"
	"github.com/Dosada05/sports-auction/handlers"
	"github.com/Dosada05/sports-auction/live"
	"github.com/Dosada05/sports-auction/middleware"
	"github.com/Dosada05/sports-auction/repositories"
	"github.com/Dosada05/sports-auction/routes"
	"github.com/Dosada05/sports-auction/services"
	"github.com/Dosada05/sports-auction/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage is not configured, photo and logo uploads are disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txManager := repositories.NewSQLTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	queueRepo := repositories.NewPostgresQueueRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	preferredRepo := repositories.NewPostgresPreferredPlayerRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	consentRepo := repositories.NewPostgresConsentRepository(dbConn)
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	tournamentService := services.NewTournamentService(tournamentRepo)
	registrationService := services.NewRegistrationService(txManager, registrationRepo, playerRepo, tournamentRepo)
	teamService := services.NewTeamService(teamRepo, playerRepo, preferredRepo, uploader)
	playerService := services.NewPlayerService(playerRepo, uploader)
	queueService := services.NewQueueService(txManager, tournamentRepo, playerRepo, queueRepo, wsHub)
	auctionService := services.NewAuctionService(txManager, tournamentRepo, teamRepo, playerRepo, queueRepo, roundRepo, wsHub)
	consentService := services.NewConsentService(consentRepo, tournamentRepo)
	profileService := services.NewProfileService(profileRepo, uploader)
	liveService := services.NewLiveService(tournamentRepo, teamRepo, queueRepo, roundRepo)
	reconcileService := services.NewReconcileService(tournamentRepo, teamRepo, roundRepo, logger)
	logger.Info("services initialized")

	// Фоновая сверка бюджетов: remaining = initial - sum(completed).
	go func() {
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()
		logger.Info("budget reconciliation scheduler started", slog.Duration("interval", cfg.ReconcileInterval))

		for range ticker.C {
			drifts, err := reconcileService.ReconcileAll(context.Background())
			if err != nil {
				logger.Error("budget reconciliation run failed", slog.Any("error", err))
				continue
			}
			if len(drifts) > 0 {
				logger.Warn("budget reconciliation found drifts", slog.Int("count", len(drifts)))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	teamHandler := handlers.NewTeamHandler(teamService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	queueHandler := handlers.NewQueueHandler(queueService)
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	consentHandler := handlers.NewConsentHandler(consentService)
	profileHandler := handlers.NewProfileHandler(profileService)
	liveHandler := handlers.NewLiveHandler(liveService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	reconcileHandler := handlers.NewReconcileHandler(reconcileService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		authenticator,
		cfg.CORSAllowedOrigins,
		authHandler,
		tournamentHandler,
		registrationHandler,
		teamHandler,
		playerHandler,
		queueHandler,
		auctionHandler,
		consentHandler,
		profileHandler,
		liveHandler,
		webSocketHandler,
		reconcileHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
