package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carsight/internal/analysis"
	"carsight/internal/chat"
	"carsight/internal/config"
	"carsight/internal/llm"
	"carsight/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	gemini, err := llm.NewGeminiClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		logger.Error("failed to init gemini client", "error", err)
		os.Exit(1)
	}
	client := llm.Chain(gemini,
		llm.WithLogging(logger),
		llm.WithRateLimit(cfg.Gemini.RPS, cfg.Gemini.Burst),
	)
	defer client.Close()

	svc := analysis.NewService(client, analysis.Models{
		Retriever:   cfg.Gemini.RetrieverModel,
		Synthesizer: cfg.Gemini.SynthesizerModel,
		IssueDetail: cfg.Gemini.IssueModel,
	}, logger)
	sessions := chat.NewRegistry(client, cfg.Gemini.ChatModel, cfg.Chat.MaxSessions, cfg.Chat.SessionTTL)

	handler := server.NewHandler(svc, sessions, logger)
	srv := server.New(cfg.Port, server.NewMux(handler), logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
