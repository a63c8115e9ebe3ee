package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/exam"
)

func (h *Handler) handleCallback(_ context.Context, cb *tgbotapi.CallbackQuery) {
	notice := ""

	cd := decodeCallback(cb.Data)
	switch cd.Action {
	case actionExam:
		notice = h.handleExamOption(cb, cd)
	default:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
	}

	// Remove the user's "clock".
	h.request(tgbotapi.NewCallback(cb.ID, notice))
}

// handleExamOption posts an option click to the chat's session and returns
// the notice shown to the user.
func (h *Handler) handleExamOption(cb *tgbotapi.CallbackQuery, cd callbackData) string {
	questionID, index, ok := parseExamOption(cd)
	if !ok {
		h.logger.Debug("invalid exam callback", zap.String("data", cd.Raw))
		return ""
	}

	if cb.Message == nil {
		return ""
	}

	sess, ok := h.sessions.Get(cb.Message.Chat.ID)
	if !ok {
		return msgNoSession
	}

	sess.Controller.Post(exam.OptionSelected{Index: index, QuestionID: questionID})
	return ""
}
