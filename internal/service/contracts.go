package service

import (
	"context"
	"time"

	"github.com/aliskhannn/nihonngo-exam/internal/client"
	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/exam"
)

type ChatRepository interface {
	Save(ctx context.Context, chat *entities.ChatSession) error
	Get(ctx context.Context, chatID int64) (*entities.ChatSession, error)
}

type JournalRepository interface {
	Record(ctx context.Context, rec *entities.AnswerRecord) error
	Stats(ctx context.Context, chatID int64, since time.Time) (*entities.AnswerStats, error)
}

// ResetRepository removes a chat session together with its journal.
type ResetRepository interface {
	ResetChat(ctx context.Context, chatID int64) error
}

// ExamClient is a server client bound to one account.
type ExamClient interface {
	exam.API
	SignIn(ctx context.Context, name, password string, remember bool) (*client.SignInResult, error)
	Cookies() []entities.Cookie
}

// ClientFactory creates a client that starts with the given cookies.
type ClientFactory func(cookies []entities.Cookie) (ExamClient, error)
