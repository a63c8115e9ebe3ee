package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/service"
)

// Bot is the part of *tgbotapi.BotAPI the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type ChatService interface {
	SignIn(ctx context.Context, chatID int64, name, password string) (string, error)
	ClientFor(ctx context.Context, chatID int64) (service.ExamClient, error)
	SignOut(ctx context.Context, chatID int64) error
}

type StatsService interface {
	Record(ctx context.Context, rec *entities.AnswerRecord) error
	Stats(ctx context.Context, chatID int64) (*entities.AnswerStats, error)
}
