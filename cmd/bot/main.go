package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/client"
	"github.com/aliskhannn/nihonngo-exam/internal/config"
	"github.com/aliskhannn/nihonngo-exam/internal/delivery/telegram"
	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/infra/postgres"
	"github.com/aliskhannn/nihonngo-exam/internal/infra/postgres/repository"
	"github.com/aliskhannn/nihonngo-exam/internal/logger"
	"github.com/aliskhannn/nihonngo-exam/internal/scheduler"
	"github.com/aliskhannn/nihonngo-exam/internal/service"
	"github.com/aliskhannn/nihonngo-exam/internal/storage"
)

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpoints, err := client.ResolveEndpoints(
		cfg.Server.BaseURL,
		cfg.Server.QuestionPath,
		cfg.Server.AnswerPath,
		cfg.Server.SignInPath,
	)
	if err != nil {
		lg.Fatal("invalid server config", zap.Error(err))
	}

	newClient := func(cookies []entities.Cookie) (service.ExamClient, error) {
		c, err := client.New(endpoints, cfg.Server.Timeout, lg)
		if err != nil {
			return nil, err
		}
		return c.WithCookies(cookies), nil
	}

	// Initialize repositories.
	var (
		chatRepo    service.ChatRepository
		journalRepo service.JournalRepository
		resetRepo   service.ResetRepository
	)
	if cfg.DB.Enabled() {
		dsn, _ := cfg.DB.DSN()
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        cfg.DB.MaxConnections,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		chatRepo = repository.NewChatRepository(pool)
		journalRepo = repository.NewJournalRepository(pool)
		resetRepo = repository.NewResetRepository(postgres.NewTransactor(pool))
	} else {
		lg.Warn("DATABASE_URL is not set, chat sessions are kept in memory")
		mem := storage.NewChatStorage()
		chatRepo, journalRepo, resetRepo = mem, mem, mem
	}

	chatService := service.NewChatService(chatRepo, resetRepo, newClient, cfg.Exam.Remember, lg)
	statsService := service.NewStatsService(journalRepo)

	handler := telegram.NewHandler(
		bot,
		lg,
		chatService,
		statsService,
		scheduler.NewTimer(),
		cfg.Exam.AdvanceDelay,
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("handler stopped", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}
