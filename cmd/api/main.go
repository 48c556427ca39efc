package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/api/underwriting"
	"agentic_underwriting/pkg/core/agents"
	"agentic_underwriting/pkg/core/config"
	"agentic_underwriting/pkg/core/llm"
	"agentic_underwriting/pkg/core/premium"
	"agentic_underwriting/pkg/core/risk"
	"agentic_underwriting/pkg/core/store"
	"agentic_underwriting/pkg/core/workflow"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	premium.StrictAgentSplit = cfg.StrictAgentSplit
	risk.AutoApprovalThreshold = cfg.AutoApprovalThreshold
	risk.HighRiskThreshold = cfg.HighRiskThreshold
	log.Info().
		Float64("auto_approval_threshold", cfg.AutoApprovalThreshold).
		Float64("high_risk_threshold", cfg.HighRiskThreshold).
		Msg("underwriting thresholds loaded")

	// Persistence is optional: without DATABASE_URL the processing endpoints
	// still work and query endpoints answer 503.
	var repo *store.UnderwritingRepo
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := store.InitDB(ctx); err != nil {
			log.Warn().Err(err).Msg("document store unavailable, running without persistence")
		} else {
			log.Info().Msg("document store connected")
		}
		cancel()
		defer store.Close()
	} else {
		log.Warn().Msg("DATABASE_URL not set, running without persistence")
	}
	repo = store.NewUnderwritingRepo()

	llmConfig, err := llm.LoadConfig(cfg.ModelConfigPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.ModelConfigPath).Msg("model config not loaded, using defaults")
	}
	llmManager := llm.NewManager(llmConfig)
	log.Info().Str("provider", llmManager.GetActiveProvider()).Msg("llm manager ready")

	runner := agents.NewRunner(llmManager)
	manager := workflow.NewManager(runner, repo)

	router := mux.NewRouter()
	underwriting.Register(router, underwriting.NewHandler(manager, repo, llmManager))
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming endpoints hold the connection open
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("underwriting API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
