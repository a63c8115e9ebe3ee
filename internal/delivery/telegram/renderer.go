package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/storage"
)

// chatRenderer shows one exam session in a chat. It is driven by the
// session's controller goroutine only.
type chatRenderer struct {
	chatID   int64
	bot      Bot
	messages *storage.MessageStorage
	logger   *zap.Logger

	question *entities.Question
	marks    map[int]entities.OptionMark
}

func newChatRenderer(chatID int64, bot Bot, messages *storage.MessageStorage, logger *zap.Logger) *chatRenderer {
	return &chatRenderer{
		chatID:   chatID,
		bot:      bot,
		messages: messages,
		logger:   logger.With(zap.Int64("chat_id", chatID)),
	}
}

// RenderQuestion sends the question card with its option keyboard and
// removes the keyboard of the previous question.
func (r *chatRenderer) RenderQuestion(q *entities.Question, familiarity string) {
	r.question = q
	r.marks = make(map[int]entities.OptionMark)

	msg := newMessage(r.chatID, formatQuestion(q, familiarity))
	msg.ReplyMarkup = buildOptionKeyboard(q, nil)

	sent, err := r.bot.Send(msg)
	if err != nil {
		r.logger.Error("failed to send question",
			zap.String("question_id", q.ID),
			zap.Error(err),
		)
		return
	}

	prev, hadPrev := r.messages.UpsertAndGetPrev(r.chatID, sent.MessageID, q.ID)
	if hadPrev && prev.MessageID != sent.MessageID {
		r.freeze(prev.MessageID)
		r.logger.Debug("question message replaced",
			zap.Int("prev_message_id", prev.MessageID),
			zap.Int("message_id", sent.MessageID),
		)
	}
}

// MarkOption decorates the option buttons of the current question.
func (r *chatRenderer) MarkOption(index int, mark entities.OptionMark) {
	if r.question == nil || index < 0 || index >= r.question.OptionCount() {
		return
	}
	r.marks[index] = mark

	cur, ok := r.messages.Get(r.chatID)
	if !ok || cur.QuestionID != r.question.ID {
		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(r.chatID, cur.MessageID, buildOptionKeyboard(r.question, r.marks))
	if _, err := r.bot.Request(edit); err != nil {
		r.logger.Error("failed to mark option",
			zap.Int("index", index),
			zap.Error(err),
		)
	}
}

// ShowMessage sends a server message.
func (r *chatRenderer) ShowMessage(text string) {
	r.send(newPlainMessage(r.chatID, text))
}

// ReplacePage sends the raw failure body instead of the question.
func (r *chatRenderer) ReplacePage(body string) {
	if cur, ok := r.messages.Get(r.chatID); ok {
		r.freeze(cur.MessageID)
		r.messages.Delete(r.chatID)
	}
	r.question = nil
	r.marks = nil

	if body == "" {
		return
	}
	r.send(newPlainMessage(r.chatID, truncate(body, maxMessageLength)))
}

// freeze removes the keyboard of an old question message.
func (r *chatRenderer) freeze(messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(r.chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := r.bot.Request(edit); err != nil {
		r.logger.Debug("failed to remove keyboard", zap.Int("message_id", messageID), zap.Error(err))
	}
}

func (r *chatRenderer) send(c tgbotapi.Chattable) {
	if _, err := r.bot.Send(c); err != nil {
		r.logger.Error("failed to send telegram message", zap.Error(err))
	}
}
