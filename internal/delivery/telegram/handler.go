package telegram

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/exam"
	"github.com/aliskhannn/nihonngo-exam/internal/scheduler"
	"github.com/aliskhannn/nihonngo-exam/internal/storage"
)

type Handler struct {
	bot          Bot
	logger       *zap.Logger
	chatService  ChatService
	statsService StatsService
	sessions     *storage.SessionStorage
	messages     *storage.MessageStorage
	scheduler    scheduler.Scheduler
	advanceDelay time.Duration
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	chatService ChatService,
	statsService StatsService,
	sched scheduler.Scheduler,
	advanceDelay time.Duration,
) *Handler {
	return &Handler{
		bot:          bot,
		logger:       logger,
		chatService:  chatService,
		statsService: statsService,
		sessions:     storage.NewSessionStorage(),
		messages:     storage.NewMessageStorage(),
		scheduler:    sched,
		advanceDelay: advanceDelay,
	}
}

// Run processes updates until ctx is cancelled. Running exam sessions are
// stopped on return.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")
	defer h.sessions.StopAll()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	chatID := update.Message.Chat.ID
	if update.Message.IsCommand() {
		h.logger.Debug("command received",
			zap.Int64("chat_id", chatID),
			zap.String("command", update.Message.Command()),
		)
		h.handleCommand(ctx, update.Message)
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)
	h.handleKeys(chatID, update.Message.Text)
}

// handleKeys forwards the first character of a text message to the
// chat's session as a key press. A busy session drops the key.
func (h *Handler) handleKeys(chatID int64, text string) {
	sess, ok := h.sessions.Get(chatID)
	if !ok {
		return
	}

	ch, size := utf8.DecodeRuneInString(strings.TrimSpace(text))
	if size == 0 {
		return
	}
	if !sess.Controller.TryPost(exam.KeyPressed{Code: int(ch)}) {
		h.logger.Debug("key dropped, session busy",
			zap.Int64("chat_id", chatID),
		)
	}
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.bot.Request(c); err != nil {
		h.logger.Debug("telegram request failed", zap.Error(err))
	}
}
