package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/exam"
	"github.com/aliskhannn/nihonngo-exam/internal/storage"
)

var (
	ErrSessionRunning = errors.New("exam session already running")
	ErrNoSession      = errors.New("no exam session running")

	errSignInUsage = errors.New("signin: expected name and password")
)

// Commands lists the bot commands registered with Telegram.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "开始使用"},
	{Command: "signin", Description: "登录（/signin 用户名 密码）"},
	{Command: "exam", Description: "开始测验"},
	{Command: "stop", Description: "结束测验"},
	{Command: "stats", Description: "答题统计"},
	{Command: "signout", Description: "退出登录"},
	{Command: "help", Description: "帮助"},
}

func (h *Handler) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID

	switch m.Command() {
	case "start":
		h.send(newPlainMessage(chatID, msgWelcome))

	case "help":
		h.send(newPlainMessage(chatID, msgHelp))

	case "signin":
		// The message carries a password.
		h.request(tgbotapi.NewDeleteMessage(chatID, m.MessageID))
		_ = h.withErrorHandling(h.signInHandler(m.CommandArguments()))(ctx, chatID)

	case "exam":
		_ = h.withErrorHandling(h.examHandler())(ctx, chatID)

	case "stop":
		_ = h.withErrorHandling(h.stopHandler())(ctx, chatID)

	case "stats":
		_ = h.withErrorHandling(h.statsHandler())(ctx, chatID)

	case "signout":
		_ = h.withErrorHandling(h.signOutHandler())(ctx, chatID)

	default:
		h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

func (h *Handler) signInHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return errSignInUsage
		}

		text, err := h.chatService.SignIn(ctx, chatID, fields[0], fields[1])
		if err != nil {
			return err
		}

		h.send(newPlainMessage(chatID, text))
		return nil
	}
}

func (h *Handler) examHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if _, ok := h.sessions.Get(chatID); ok {
			return ErrSessionRunning
		}

		api, err := h.chatService.ClientFor(ctx, chatID)
		if err != nil {
			return err
		}

		return h.startSession(ctx, chatID, api)
	}
}

// startSession runs a new exam controller for chatID until it terminates,
// is stopped or ctx is cancelled.
func (h *Handler) startSession(ctx context.Context, chatID int64, api exam.API) error {
	id := ulid.Make().String()
	logger := h.logger.With(zap.Int64("chat_id", chatID))

	ctrl := exam.NewController(
		id,
		api,
		newChatRenderer(chatID, h.bot, h.messages, h.logger),
		h.scheduler,
		logger,
		exam.WithJournal(h.statsService),
		exam.WithChatID(chatID),
		exam.WithMachine(exam.NewMachine(h.advanceDelay)),
	)

	sessCtx, cancel := context.WithCancel(ctx)
	sess := &storage.Session{Controller: ctrl, Cancel: cancel, StartedAt: time.Now()}
	if !h.sessions.StoreIfAbsent(chatID, sess) {
		cancel()
		return ErrSessionRunning
	}

	go func() {
		defer cancel()

		err := ctrl.Run(sessCtx)
		h.sessions.Delete(chatID, sess)

		switch {
		case errors.Is(err, exam.ErrSessionTerminated):
			h.messages.Delete(chatID)
			h.send(newPlainMessage(chatID, msgSessionFailed))
		case errors.Is(err, context.Canceled):
		default:
			logger.Error("exam session failed", zap.String("session_id", id), zap.Error(err))
		}
	}()

	return nil
}

func (h *Handler) stopHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if !h.sessions.Stop(chatID) {
			return ErrNoSession
		}
		h.messages.Delete(chatID)
		h.send(newPlainMessage(chatID, msgSessionStopped))
		return nil
	}
}

func (h *Handler) statsHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		st, err := h.statsService.Stats(ctx, chatID)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		h.send(newMessage(chatID, formatStats(st)))
		return nil
	}
}

func (h *Handler) signOutHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.sessions.Stop(chatID)
		h.messages.Delete(chatID)

		if err := h.chatService.SignOut(ctx, chatID); err != nil {
			return err
		}

		h.send(newPlainMessage(chatID, msgSignedOut))
		return nil
	}
}
