package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/exam"
	"github.com/aliskhannn/nihonngo-exam/internal/scheduler"
)

type idleAPI struct{}

func (idleAPI) FetchQuestion(context.Context) (*entities.QuestionResponse, error) {
	return &entities.QuestionResponse{}, nil
}

func (idleAPI) SubmitAnswer(context.Context, string, string) (*entities.AnswerResult, error) {
	return &entities.AnswerResult{}, nil
}

type nopRenderer struct{}

func (nopRenderer) RenderQuestion(*entities.Question, string) {}
func (nopRenderer) MarkOption(int, entities.OptionMark)       {}
func (nopRenderer) ShowMessage(string)                        {}
func (nopRenderer) ReplacePage(string)                        {}

func newSession(t *testing.T) (*Session, *bool) {
	t.Helper()
	cancelled := false
	c := exam.NewController("s", idleAPI{}, nopRenderer{}, scheduler.NewManual(), zap.NewNop())
	return &Session{Controller: c, Cancel: func() { cancelled = true }, StartedAt: time.Now()}, &cancelled
}

func finish(t *testing.T, sess *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = sess.Controller.Run(ctx)
	<-sess.Controller.Done()
}

func TestSessionStorage(t *testing.T) {
	s := NewSessionStorage()
	first, firstCancelled := newSession(t)
	second, _ := newSession(t)

	require.True(t, s.StoreIfAbsent(1, first))
	assert.False(t, s.StoreIfAbsent(1, second), "running session must not be replaced")

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Same(t, first, got)

	finish(t, first)
	_, ok = s.Get(1)
	assert.False(t, ok, "finished sessions are not returned")
	assert.True(t, s.StoreIfAbsent(1, second))

	s.Delete(1, first)
	_, ok = s.Get(1)
	assert.True(t, ok, "delete of a stale session keeps the new one")

	assert.True(t, s.Stop(1))
	assert.False(t, s.Stop(1))
	assert.False(t, *firstCancelled)
}

func TestSessionStorage_StopAll(t *testing.T) {
	s := NewSessionStorage()
	a, aCancelled := newSession(t)
	b, bCancelled := newSession(t)
	s.StoreIfAbsent(1, a)
	s.StoreIfAbsent(2, b)

	s.StopAll()

	assert.True(t, *aCancelled)
	assert.True(t, *bCancelled)
	_, ok := s.Get(1)
	assert.False(t, ok)
}

func TestMessageStorage(t *testing.T) {
	s := NewMessageStorage()

	_, had := s.UpsertAndGetPrev(5, 100, "q1")
	assert.False(t, had)

	prev, had := s.UpsertAndGetPrev(5, 101, "q2")
	require.True(t, had)
	assert.Equal(t, 100, prev.MessageID)
	assert.Equal(t, "q1", prev.QuestionID)

	cur, ok := s.Get(5)
	require.True(t, ok)
	assert.Equal(t, 101, cur.MessageID)

	s.Delete(5)
	_, ok = s.Get(5)
	assert.False(t, ok)
}

func TestChatStorage_Sessions(t *testing.T) {
	ctx := context.Background()
	s := NewChatStorage()

	_, err := s.Get(ctx, 9)
	assert.ErrorIs(t, err, entities.ErrChatNotFound)

	chat := entities.NewChatSession(9, "yuki", []entities.Cookie{{Name: "sessionid", Value: "a"}})
	require.NoError(t, s.Save(ctx, chat))
	chat.Cookies[0].Value = "mutated"

	got, err := s.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "yuki", got.Username)
	assert.Equal(t, "a", got.Cookies[0].Value)
}

func TestChatStorage_JournalStats(t *testing.T) {
	ctx := context.Background()
	s := NewChatStorage()
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	q := &entities.Question{ID: "1", Term: "猫"}
	records := []*entities.AnswerRecord{
		entities.NewAnswerRecord("s", q, 1, 1),
		entities.NewAnswerRecord("s", q, 0, 2),
		entities.NewAnswerRecord("s", q, 3, 3),
		entities.NewAnswerRecord("s", q, 3, 3),
	}
	records[0].AnsweredAt = today.Add(-time.Hour)
	records[1].AnsweredAt = today.Add(time.Hour)
	records[2].AnsweredAt = today.Add(2 * time.Hour)
	records[3].ChatID = 2
	for i, rec := range records[:3] {
		rec.ChatID = 1
		require.NoError(t, s.Record(ctx, rec))
		assert.Equal(t, int64(i+1), rec.ID)
	}
	require.NoError(t, s.Record(ctx, records[3]))

	st, err := s.Stats(ctx, 1, today)
	require.NoError(t, err)
	assert.Equal(t, &entities.AnswerStats{Total: 3, Correct: 2, AnsweredToday: 2}, st)

	require.NoError(t, s.Save(ctx, entities.NewChatSession(1, "yuki", nil)))
	require.NoError(t, s.ResetChat(ctx, 1))

	st, err = s.Stats(ctx, 1, today)
	require.NoError(t, err)
	assert.Zero(t, st.Total)
	_, err = s.Get(ctx, 1)
	assert.ErrorIs(t, err, entities.ErrChatNotFound)

	st, err = s.Stats(ctx, 2, today)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Total)
}
