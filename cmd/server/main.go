package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studyfeed/quiz-service/internal/cache"
	"github.com/studyfeed/quiz-service/internal/config"
	"github.com/studyfeed/quiz-service/internal/handlers"
	"github.com/studyfeed/quiz-service/internal/repositories/postgres"
	"github.com/studyfeed/quiz-service/internal/services"
	"github.com/studyfeed/quiz-service/internal/utils"
	"github.com/studyfeed/quiz-service/internal/validator"
	"github.com/studyfeed/quiz-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "failed to initialize database")
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)

	// Sessions are short-lived so they live in Redis. The in-memory cache
	// keeps single-instance deployments working without one.
	var cacheService cache.CacheService
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.LogError(err, "failed to connect to redis")
			os.Exit(1)
		}
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogLogger)
		logger.Info("Using Redis session cache", "url", cfg.RedisURL)
	} else {
		cacheService = cache.NewMemoryCache()
		logger.Warn("REDIS_URL not set, using in-memory session cache")
	}
	sessionStore := cache.NewSessionStore(cacheService)

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.LogError(err, "failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()

	quizService := services.NewQuizService(repo, sessionStore, publisher, slogLogger, v)
	questionService := services.NewQuestionService(repo, slogLogger, v)
	studyService := services.NewStudyService(repo, sessionStore, slogLogger, v)
	importExportService := services.NewImportExportService(repo, studyService, slogLogger, v)

	if cfg.SeedFile != "" {
		if err := loadSeedFile(importExportService, cfg.SeedFile, logger); err != nil {
			logger.LogError(err, "failed to load seed file", "file", cfg.SeedFile)
			os.Exit(1)
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	handlerManager := handlers.NewHandlerManager(
		quizService,
		questionService,
		studyService,
		importExportService,
		v,
		logger,
	)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.LogError(err, "server forced to shutdown")
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.LogError(err, "server failed to start")
		os.Exit(1)
	}
}

func loadSeedFile(svc services.ImportExportService, path string, logger utils.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := svc.LoadSeed(context.Background(), file)
	if err != nil {
		return err
	}

	logger.Info("Seed file loaded",
		"file", path,
		"questions", result.QuestionCount,
		"topics", result.TopicCount)
	return nil
}
