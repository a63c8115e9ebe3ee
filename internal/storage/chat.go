package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

// ChatStorage keeps chat sessions and the answer journal in memory.
// It is used when no database is configured.
type ChatStorage struct {
	mu      sync.RWMutex
	chats   map[int64]entities.ChatSession
	journal []entities.AnswerRecord
	nextID  int64
}

// NewChatStorage creates an empty ChatStorage.
func NewChatStorage() *ChatStorage {
	return &ChatStorage{
		chats: make(map[int64]entities.ChatSession),
	}
}

// Save inserts or replaces the chat session.
func (s *ChatStorage) Save(_ context.Context, chat *entities.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *chat
	c.Cookies = slices.Clone(chat.Cookies)
	s.chats[chat.ChatID] = c
	return nil
}

// Get returns the chat session or entities.ErrChatNotFound.
func (s *ChatStorage) Get(_ context.Context, chatID int64) (*entities.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[chatID]
	if !ok {
		return nil, entities.ErrChatNotFound
	}
	c.Cookies = slices.Clone(c.Cookies)
	return &c, nil
}

// Record appends a journal entry and assigns its ID.
func (s *ChatStorage) Record(_ context.Context, rec *entities.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	s.journal = append(s.journal, *rec)
	return nil
}

// Stats summarizes the journal of chatID. Entries at or after since count as today.
func (s *ChatStorage) Stats(_ context.Context, chatID int64, since time.Time) (*entities.AnswerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st entities.AnswerStats
	for _, rec := range s.journal {
		if rec.ChatID != chatID {
			continue
		}
		st.Total++
		if rec.IsCorrect {
			st.Correct++
		}
		if !rec.AnsweredAt.Before(since) {
			st.AnsweredToday++
		}
	}
	return &st, nil
}

// ResetChat removes the chat session and its journal entries.
func (s *ChatStorage) ResetChat(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chats, chatID)
	s.journal = slices.DeleteFunc(s.journal, func(rec entities.AnswerRecord) bool {
		return rec.ChatID == chatID
	})
	return nil
}
