package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/vytor/notebot/internal/api"
	"github.com/vytor/notebot/internal/config"
	"github.com/vytor/notebot/internal/conversation"
	"github.com/vytor/notebot/internal/db"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/reminder"
	"github.com/vytor/notebot/internal/repository/sqlite"
	"github.com/vytor/notebot/internal/review"
	"github.com/vytor/notebot/internal/services"
	"github.com/vytor/notebot/internal/telegram"
)

func main() {
	cfg := config.Load()

	flags := pflag.NewFlagSet("notebot", pflag.ExitOnError)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
	colors := flags.Bool("colors", false, "colorize log output")
	_ = flags.Parse(os.Args[1:])

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(*colors),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("notebot starting")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("telegram_api_url=%s", cfg.TelegramAPIURL)
	log.Debug("review_limit=%d", cfg.ReviewLimit)
	log.Debug("review_concurrency=%d", cfg.ReviewConcurrency)
	log.Debug("delivery_timeout=%s", cfg.DeliveryTimeout)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	bot := telegram.New(cfg.TelegramToken,
		telegram.WithBaseURL(cfg.TelegramAPIURL),
		telegram.WithTimeout(cfg.DeliveryTimeout),
	)

	flashcards := sqlite.NewFlashcardRepository(database.DB)
	interactions := sqlite.NewInteractionRepository(database.DB)

	botService := services.NewBotService(services.BotDependencies{
		Messenger:    bot,
		Conversation: conversation.NewMachine(interactions, flashcards),
		Review:       review.NewSession(flashcards, bot, cfg.ReviewConcurrency),
		Reminders:    reminder.NewService(sqlite.NewSnapshotRepository(database.DB), sqlite.NewReminderRepository(database.DB)),
		Flashcards:   flashcards,
		Notes:        sqlite.NewNoteRepository(database.DB),
		ReviewLimit:  cfg.ReviewLimit,
	})

	srv := &api.Server{
		Bot:           botService,
		DB:            database,
		WebhookSecret: cfg.WebhookSecret,
		UpdateTimeout: updateTimeout(cfg),
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: srv.UpdateTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("notebot stopped")
}

// updateTimeout leaves room for the largest review batch a chat can ask for,
// delivered one card at a time, plus the answer.
func updateTimeout(cfg config.Config) time.Duration {
	batch := max(cfg.ReviewLimit, services.MaxReviewLimit)
	return cfg.DeliveryTimeout * time.Duration(batch+1)
}
