package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduprep/exam-engine/internal/config"
	"github.com/eduprep/exam-engine/internal/database"
	"github.com/eduprep/exam-engine/internal/handler"
	"github.com/eduprep/exam-engine/internal/logger"
	"github.com/eduprep/exam-engine/internal/mathspan"
	"github.com/eduprep/exam-engine/internal/remote"
	"github.com/eduprep/exam-engine/internal/repository"
	"github.com/eduprep/exam-engine/internal/review"
	"github.com/eduprep/exam-engine/internal/router"
	"github.com/eduprep/exam-engine/internal/service"
	"github.com/eduprep/exam-engine/internal/validator"
	"github.com/eduprep/exam-engine/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Exam Engine")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Remote Exam API Client ────────────────────────────────────────
	examClient := remote.NewClient(cfg.ExamAPIBaseURL, cfg.ExamAPITimeout, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	journalRepo := repository.NewAttemptJournalRepository(pool)

	// Journaled results that never reached the remote store normally drain
	// through the retry queue; any still pending at startup deserve an
	// operator's attention.
	if undelivered, err := journalRepo.UndeliveredSince(ctx, time.Now().AddDate(0, 0, -7)); err != nil {
		log.Warn().Err(err).Msg("Undelivered results check failed")
	} else {
		for _, u := range undelivered {
			log.Warn().
				Str("exam_id", u.ExamID.String()).
				Str("user_id", u.UserID).
				Time("submitted_at", u.SubmittedAt).
				Msg("Journaled result still awaiting remote delivery")
		}
	}

	// ─── Start Background Workers ──────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	retryWorker := worker.NewSubmitRetryWorker(rdb, examClient, journalRepo, cfg.SubmitRetryDelay, log)
	autosaveWorker := worker.NewAutosaveWorker(rdb, journalRepo, log)

	go retryWorker.Start(workerCtx)
	go autosaveWorker.Start(workerCtx)

	// ─── Initialize Services ───────────────────────────────────────────
	sessionService := service.NewSessionService(examClient, rdb, journalRepo, retryWorker, log)
	reviewRenderer := review.NewRenderer(mathspan.ClientSideDelegate{})
	reviewService := service.NewReviewService(examClient, reviewRenderer, log)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService),
		Review:  handler.NewReviewHandler(reviewService),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Cancel live countdowns. Start times live in Redis, so an attempt
	// resumes with the right clock when the process comes back.
	sessionService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
