package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-clinic-support/internal/application"
	"telegram-clinic-support/internal/config"
	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/adapter"
	"telegram-clinic-support/internal/domain/ports/repository"
	aiAdapters "telegram-clinic-support/internal/infra/adapters/ai"
	tele "telegram-clinic-support/internal/infra/adapters/telegram"
	"telegram-clinic-support/internal/infra/api"
	mem "telegram-clinic-support/internal/infra/db/memory"
	pg "telegram-clinic-support/internal/infra/db/postgres"
	"telegram-clinic-support/internal/infra/i18n"
	"telegram-clinic-support/internal/infra/logging"
	"telegram-clinic-support/internal/infra/metrics"
	red "telegram-clinic-support/internal/infra/redis"
	"telegram-clinic-support/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop Telegram and AI)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Storage (Postgres, or in-memory without a database URL) ----
	// LoadConfig refuses a missing database.url outside dev mode, so
	// the in-memory branch is dev-only.
	var (
		patientRepo     repository.PatientRepository
		appointmentRepo repository.AppointmentRepository
		messageLogRepo  repository.MessageLogRepository
	)
	dbUp := false
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connect failed")
		}
		defer pool.Close()
		go pg.ReportPoolStats(ctx, pool, 15*time.Second)
		patientRepo = pg.NewPatientRepo(pool)
		appointmentRepo = pg.NewAppointmentRepo(pool)
		messageLogRepo = pg.NewMessageLogRepo(pool)
		dbUp = true
	} else {
		logger.Warn().Msg("no database.url; using in-memory storage, all data is lost on restart")
		patientRepo = mem.NewPatientRepo()
		appointmentRepo = mem.NewAppointmentRepo()
		messageLogRepo = mem.NewMessageLogRepo()
	}

	// ---- Redis (optional; without it rate limiting is disabled) ----
	var rateLimiter *red.RateLimiter
	redisUp := false
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; rate limiting disabled")
		} else {
			rateLimiter = red.NewRateLimiter(redisClient)
			redisUp = true
		}
	}

	// ---- Translator ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		logger.Fatal().Err(err).Msg("translator load failed")
	}

	// ---- AI Adapter (Gemini -> OpenAI -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	provider := "noop"
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, 0)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter init failed")
		}
		provider = "gemini"
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter init failed")
		}
		provider = "openai"
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
	default:
		logger.Fatal().Msg("no AI provider configured: set ai.gemini_key or ai.openai_key")
	}
	logger.Info().Str("provider", provider).Str("model", cfg.AI.DefaultModel).Msg("AI adapter ready")

	// ---- Use cases ----
	resolverUC := usecase.NewResolverUseCase(appointmentRepo, cfg.Clinic, translator, logger)
	if cfg.AI.AssistReplies {
		resolverUC.AttachAssistant(ai)
		logger.Info().Msg("assistant-drafted health replies enabled")
	}
	mediaUC := usecase.NewMediaUseCase(ai, provider, translator, logger)
	statsUC := usecase.NewStatsUseCase(appointmentRepo, messageLogRepo, logger)
	patientUC := usecase.NewPatientUseCase(patientRepo, logger)

	// ---- Facade ----
	classifier := model.NewClassifier(cfg.Clinic.OwnerName)
	facade := application.NewBotFacade(classifier, resolverUC, mediaUC, statsUC, patientUC, messageLogRepo, translator, cfg.Bot.AdminID, logger)

	// ---- Telegram ----
	if cfg.Runtime.Dev && cfg.Bot.Token == "" {
		logger.Warn().Msg("no bot token; polling disabled, staff alerts go to the process log")
		facade.AttachNotifier(tele.NewNoopBotAdapter())
	} else {
		botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, translator, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram init failed")
		}
		facade.AttachNotifier(botAdapter)
		if strings.ToLower(cfg.Bot.Mode) != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
		}
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- Admin HTTP API ----
	auth := api.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	health := func() map[string]bool {
		return map[string]bool{
			"database": dbUp,
			"redis":    redisUp,
			"ai":       provider != "noop",
			"telegram": cfg.Bot.Token != "",
		}
	}
	apiSrv := api.NewServer(statsUC, auth, cfg.Admin.APIKey, health, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: apiSrv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
