package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

var ErrNotSignedIn = errors.New("chat is not signed in")

// ChatService binds telegram chats to server accounts.
type ChatService struct {
	repository ChatRepository
	reset      ResetRepository
	newClient  ClientFactory
	remember   bool
	logger     *zap.Logger
}

func NewChatService(
	repository ChatRepository,
	reset ResetRepository,
	newClient ClientFactory,
	remember bool,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		repository: repository,
		reset:      reset,
		newClient:  newClient,
		remember:   remember,
		logger:     logger,
	}
}

// SignIn authenticates name on the server and stores the resulting cookies
// for chatID. It returns the server's message.
func (s *ChatService) SignIn(ctx context.Context, chatID int64, name, password string) (string, error) {
	c, err := s.newClient(nil)
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	res, err := c.SignIn(ctx, name, password, s.remember)
	if err != nil {
		return "", err
	}

	chat := entities.NewChatSession(chatID, name, c.Cookies())
	if err := s.repository.Save(ctx, chat); err != nil {
		return "", fmt.Errorf("save chat session: %w", err)
	}

	s.logger.Info("chat signed in",
		zap.Int64("chat_id", chatID),
		zap.String("username", name),
	)

	return res.Message, nil
}

// ClientFor returns a client carrying the stored cookies of chatID.
func (s *ChatService) ClientFor(ctx context.Context, chatID int64) (ExamClient, error) {
	chat, err := s.repository.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, entities.ErrChatNotFound) {
			return nil, ErrNotSignedIn
		}
		return nil, err
	}

	c, err := s.newClient(chat.Cookies)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// SignOut forgets the account and the answer journal of chatID.
func (s *ChatService) SignOut(ctx context.Context, chatID int64) error {
	if err := s.reset.ResetChat(ctx, chatID); err != nil {
		return fmt.Errorf("reset chat: %w", err)
	}

	s.logger.Info("chat signed out", zap.Int64("chat_id", chatID))
	return nil
}
