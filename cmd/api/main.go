package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizforge/internal/adapter"
	"quizforge/internal/adapter/ai"
	"quizforge/internal/cache"
	"quizforge/internal/config"
	"quizforge/internal/database"
	"quizforge/internal/domain"
	"quizforge/internal/handler"
	"quizforge/internal/logger"
	"quizforge/internal/middleware"
	"quizforge/internal/repository"
	"quizforge/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger.Env, cfg.Logger.Level); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	txManager := repository.NewTransactionManagerAdapter(db)
	quizRepository := repository.NewQuizDatabaseAdapter(db, txManager)
	submissionRepository := repository.NewSubmissionDatabaseAdapter(db)
	hintRepository := repository.NewHintDatabaseAdapter(db)

	// An unreachable Redis falls back to the in-process cache so the API
	// stays up, just without cross-instance sharing.
	var cacheAdapter domain.Cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		cacheAdapter = cache.NewMemoryCacheAdapter()
	} else {
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
	}

	collaborators, err := ai.NewCollaborators(context.Background(), cfg.AI)
	if err != nil {
		appLogger.Fatal("Failed to initialize AI collaborators", zap.Error(err))
	}
	appLogger.Info("AI collaborators initialized", zap.String("provider", cfg.AI.Provider))

	quizCacheService := service.NewQuizCacheService(cacheAdapter, quizRepository, cfg.CacheTTL.Quiz)
	generationService := service.NewGenerationService(collaborators.Generator, ai.NewStubCollaborator())
	evaluationService := service.NewEvaluationService(collaborators.Grader)
	historyService := service.NewHistoryService(cacheAdapter, submissionRepository, cfg.CacheTTL.History)

	quizService := service.NewQuizService(
		quizRepository,
		submissionRepository,
		hintRepository,
		quizCacheService,
		cacheAdapter,
		generationService,
		evaluationService,
		collaborators.Hinter,
		historyService,
		cfg.CacheTTL.Hints,
	)

	quizHandler := handler.NewQuizHandler(quizService, historyService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := cacheAdapter.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	apiGroup := app.Group("/api", middleware.Protected(cfg.JWT.Secret))

	apiGroup.Post("/quiz/generate", quizHandler.GenerateQuiz)
	apiGroup.Get("/quiz/:quizId", quizHandler.GetQuiz)
	apiGroup.Post("/quiz/:quizId/submit", quizHandler.SubmitQuiz)
	apiGroup.Post("/quiz/:quizId/retry", quizHandler.RetryQuiz)
	apiGroup.Delete("/quiz/:quizId", quizHandler.DeleteQuiz)
	apiGroup.Get("/quiz/:quizId/hint/:questionId", quizHandler.GetHint)
	apiGroup.Get("/history", quizHandler.GetHistory)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
