package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/pipeline"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	resumeRepo := repositories.NewResumeRepository(db)
	sessionRepo := repositories.NewRankingSessionRepository(db)
	unknownSkillRepo := repositories.NewUnknownSkillRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}

	p, err := pipeline.New(cfg, log)
	if err != nil {
		log.Fatal("failed to build screening pipeline", zap.Error(err))
	}

	jobs := services.NewRankingJobService(sessionRepo, resumeRepo, p.Ranker, log.Named("jobs"))
	worker := services.NewWorker(sessionRepo, jobs, cfg.Worker.Concurrency, cfg.Worker.PollInterval, log.Named("worker"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	validate := validator.New()

	uploadHandler := handlers.NewUploadHandler(
		resumeRepo,
		unknownSkillRepo,
		storageService,
		p.Extractor,
		p.Profiles,
		cfg.Storage.MaxFileSize,
		log.Named("upload"),
	)
	scoreHandler := handlers.NewScoreHandler(resumeRepo, p.Ranker, validate)
	rankHandler := handlers.NewRankHandler(sessionRepo, resumeRepo, worker, validate)
	resultHandler := handlers.NewResultHandler(sessionRepo)
	unknownSkillHandler := handlers.NewUnknownSkillHandler(unknownSkillRepo)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Screener API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 10,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/upload", uploadHandler.HandleUpload)
	api.Post("/score", scoreHandler.HandleScore)
	api.Post("/rank", rankHandler.HandleRank)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Delete("/result/:id", resultHandler.HandleDeleteResult)
	api.Get("/sessions", resultHandler.HandleListSessions)
	api.Get("/unknown-skills", unknownSkillHandler.HandleList)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screener API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/score",
				"POST /api/v1/rank",
				"GET /api/v1/result/:id",
				"DELETE /api/v1/result/:id",
				"GET /api/v1/sessions",
				"GET /api/v1/unknown-skills",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
