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

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/chat-assistant/internal/agent"
	"github.com/example/chat-assistant/internal/application"
	"github.com/example/chat-assistant/internal/config"
	httptransport "github.com/example/chat-assistant/internal/http"
	"github.com/example/chat-assistant/internal/llm"
	"github.com/example/chat-assistant/internal/persistence/sqlite"
	"github.com/example/chat-assistant/internal/retrieval"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	events := sqlite.NewEventRepository(pool)
	members := sqlite.NewMemberRepository(pool)
	plans := sqlite.NewPlanRepository(pool)

	completer := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	retriever := retrieval.NewClient(cfg.RetrievalBaseURL)

	idGenerator := uuid.NewString
	now := time.Now

	schedulingService := application.NewSchedulingServiceWithOptions(events, members, idGenerator, now, logger, application.SchedulingOptions{
		Horizon:                cfg.ScheduleHorizon,
		DefaultDurationMinutes: cfg.DefaultDurationMins,
	})
	planService := application.NewPlanService(
		agent.NewClassifier(completer),
		agent.NewExecutor(completer, retriever, schedulingService, schedulingService),
		agent.NewSummarizer(completer),
		plans,
		idGenerator,
		now,
		logger,
	)
	memberService := application.NewMemberService(members, schedulingService.InvalidateRoster, logger)

	sweeper := cron.New()
	sweeper.Schedule(cron.Every(cfg.SweepInterval), cron.FuncJob(func() {
		if _, err := schedulingService.CompleteElapsedEvents(context.Background()); err != nil {
			logger.Error("failed to close elapsed events", "error", err)
		}
	}))
	sweeper.Start()
	defer sweeper.Stop()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Schedules: httptransport.NewScheduleHandler(schedulingService, logger),
		Plans:     httptransport.NewPlanHandler(planService, logger),
		Events:    httptransport.NewEventHandler(schedulingService, logger),
		Members:   httptransport.NewMemberHandler(memberService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireUser(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("assistant API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
