package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/client"
	"github.com/aliskhannn/nihonngo-exam/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		err := fn(ctx, chatID)
		if err == nil {
			return nil
		}

		if text, ok := userMessage(err); ok {
			h.send(newPlainMessage(chatID, text))
			return nil
		}

		h.logger.Error("handle error",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		h.sendError(chatID, msgInternalError)
		return nil
	}
}

// userMessage maps expected errors to the text shown to the user.
func userMessage(err error) (string, bool) {
	var rejected *client.RejectedError

	switch {
	case errors.Is(err, service.ErrNotSignedIn):
		return msgNotSignedIn, true
	case errors.Is(err, ErrSessionRunning):
		return msgSessionRunning, true
	case errors.Is(err, ErrNoSession):
		return msgNoSession, true
	case errors.Is(err, errSignInUsage):
		return msgSignInUsage, true
	case errors.Is(err, client.ErrEmptyCredentials):
		return client.ErrEmptyCredentials.Error(), true
	case errors.As(err, &rejected):
		return rejected.Message, true
	}
	return "", false
}
