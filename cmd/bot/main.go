// Package main contains the entrypoint for the chat-discovery service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mailsnielsen/telegram-bot-debugger/internal/bot"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/bot/tasks"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/config"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/database"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/logger"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/monitor"
	"github.com/mailsnielsen/telegram-bot-debugger/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, db, client, monitor,
// scheduler), starts the orchestrator, and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format == "json")
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	client, err := telegram.NewClient(cfg.Telegram.Token, log)
	if err != nil {
		log.Error("Failed to create Telegram client", "error", err)
		return 1
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		log.Error("Failed to validate bot token", "error", err)
		return 1
	}
	log.Info("Bot token validated", "bot_id", me.ID, "bot_username", me.Username)

	// Long polling is rejected while a webhook is registered.
	if err := client.DeleteWebhook(ctx, cfg.Telegram.DropPendingUpdates); err != nil {
		log.Warn("Failed to delete webhook, polling may be rejected", "error", err)
	}

	processor := telegram.NewUpdateProcessor()
	mon := monitor.NewService(client, log, monitor.Options{
		PollTimeoutSeconds: cfg.Monitor.PollTimeout,
		IdleInterval:       cfg.Monitor.IdleInterval,
		BufferSize:         cfg.Monitor.BufferSize,
		RecentLimit:        cfg.Monitor.RecentLimit,
	})

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, nil)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, store, processor, mon, sched)
	sched.SetTasks(tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Registry: app,
	}))

	log.Info("Starting chat discovery...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Stopped due to error", "error", runErr)
		return 1
	}
	log.Info("Stopped gracefully.")
	return 0
}
