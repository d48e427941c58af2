package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/infra/config"
	idb "homework_status_bot/internal/infra/database"
	"homework_status_bot/internal/infra/health"
	"homework_status_bot/internal/infra/logger"
	"homework_status_bot/internal/infra/practicum"
	"homework_status_bot/internal/infra/scheduler"
	"homework_status_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	log, logCloser := logger.New(cfg)
	defer logCloser.Close()
	mainLogger := log.WithField("component", "main")
	mainLogger.WithFields(logrus.Fields{
		"environment":  cfg.Environment,
		"chat_id":      cfg.TelegramChatID,
		"retry_period": cfg.RetryPeriod.String(),
	}).Info("Configuration loaded")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bot, err := telegram.NewBot(cfg.TelegramToken, "", func(err error, c telebot.Context) { // Global error handler
		entry := log.WithField("component", "telebot").WithError(err)
		if c != nil && c.Sender() != nil && c.Chat() != nil {
			entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
		}
		entry.Error("Telegram bot error")
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	journal := openJournal(ctx, cfg, mainLogger)

	notifier := app.NewNotifier(
		telegram.NewTelebotAdapter(bot),
		cfg.TelegramChatID,
		journal,
		log.WithField("component", "notifier"),
	)
	watcher := app.NewWatcher(
		practicum.New(cfg.PracticumEndpoint, cfg.PracticumToken, cfg.HTTPTimeout),
		notifier,
		scheduler.NewPollScheduler(cfg.RetryPeriod),
		log.WithField("component", "watcher"),
		time.Now().Unix(),
	)

	if cfg.HealthAddr != "" {
		go func() {
			if err := health.Run(ctx, cfg.HealthAddr, watcher, log.WithField("component", "health")); err != nil {
				mainLogger.WithError(err).Error("Health server stopped")
			}
		}()
	}

	if cfg.BotCommandsEnabled {
		telegram.RegisterBotCommands(bot, cfg.TelegramChatID, watcher, log.WithField("component", "telegram"))
		go bot.Start()
		defer bot.Stop()
		mainLogger.Info("Bot command handlers registered")
	}

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		mainLogger.WithError(err).Error("Watcher exited unexpectedly")
	}
	mainLogger.Info("Application shut down gracefully")
}

// openJournal connects the optional delivery journal. Any failure disables it.
func openJournal(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) homework.Journal {
	if cfg.DatabaseURL == "" {
		log.Debug("DATABASE_URL not set, delivery journal disabled")
		return nil
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := idb.NewPostgresConnection(connCtx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Warn("Delivery journal disabled: database unavailable")
		return nil
	}
	repo := idb.NewPostgresJournalRepository(db)
	if err := repo.EnsureSchema(connCtx); err != nil {
		db.Close()
		log.WithError(err).Warn("Delivery journal disabled: schema setup failed")
		return nil
	}
	log.Info("Delivery journal enabled")
	return repo
}
