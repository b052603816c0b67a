package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"quickread/internal/bot"
	"quickread/internal/config"
	"quickread/internal/history"
	"quickread/internal/page"
	"quickread/internal/scheduler"
	"quickread/internal/session"
	"quickread/internal/settings"
	"quickread/internal/storage"
	"quickread/internal/summarizer"
	"syscall"
	"time"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	kv, err := initStorage(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize storage",
			"error", err,
			"backend", cfg.StorageBackend)

		return
	}
	defer func() {
		if err = kv.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close storage",
				"error", err,
				"backend", cfg.StorageBackend)
		}
	}()
	log.InfoContext(ctx, "Storage is initialized",
		"backend", cfg.StorageBackend)

	sum := initSummarizer(ctx, cfg, log)
	fetcher := page.NewFetcher(&http.Client{Timeout: cfg.PageFetchTimeout}, log)
	store := history.NewStore(kv)
	service := session.New(fetcher, sum, settings.New(kv), store, log)

	botInst, err := bot.New(cfg.Token, service, cfg.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers))

	if cfg.HistoryRetentionDays > 0 {
		sched := scheduler.New(ctx, store, cfg.HistoryRetentionSpec, cfg.HistoryRetention(), log)

		if err = sched.Start(); err != nil {
			log.ErrorContext(ctx, "Failed to start scheduler",
				"error", err,
				"spec", sched.Spec())

			return
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Scheduler is started",
			"spec", sched.Spec(),
			"retentionDays", cfg.HistoryRetentionDays)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		botInst.Start(ctx)
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	<-done
	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.KV, error) {
	if cfg.StorageBackend == config.StorageRedis {
		kv, err := storage.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}

		return kv, nil
	}

	kv, err := storage.NewSQLite(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, err
	}

	return kv, nil
}

func initSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Summarizer {
	if cfg.LLMProvider == config.ProviderOpenAI {
		log.InfoContext(ctx, "OpenAI summarizer is initialized",
			"provider", cfg.LLMProvider)

		return summarizer.NewOpenAISummarizer(cfg.OpenAIModel)
	}

	log.InfoContext(ctx, "Gemini summarizer is initialized",
		"provider", cfg.LLMProvider)

	return summarizer.NewGeminiSummarizer(nil, cfg.GeminiBaseURL, cfg.GeminiModel)
}
