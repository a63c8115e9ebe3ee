package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/client"
	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/exam"
	"github.com/aliskhannn/nihonngo-exam/internal/scheduler"
	"github.com/aliskhannn/nihonngo-exam/internal/service"
	"github.com/aliskhannn/nihonngo-exam/internal/storage"
)

type fakeBot struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
}

func newFakeBot() *fakeBot {
	return &fakeBot{nextID: 100, updates: make(chan tgbotapi.Update)}
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (b *fakeBot) edits() []tgbotapi.EditMessageReplyMarkupConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []tgbotapi.EditMessageReplyMarkupConfig
	for _, c := range b.requests {
		if e, ok := c.(tgbotapi.EditMessageReplyMarkupConfig); ok {
			out = append(out, e)
		}
	}
	return out
}

func (b *fakeBot) requested() []tgbotapi.Chattable {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), b.requests...)
}

type mockChatService struct {
	mock.Mock
}

func (m *mockChatService) SignIn(ctx context.Context, chatID int64, name, password string) (string, error) {
	args := m.Called(ctx, chatID, name, password)
	return args.String(0), args.Error(1)
}

func (m *mockChatService) ClientFor(ctx context.Context, chatID int64) (service.ExamClient, error) {
	args := m.Called(ctx, chatID)
	c, _ := args.Get(0).(service.ExamClient)
	return c, args.Error(1)
}

func (m *mockChatService) SignOut(ctx context.Context, chatID int64) error {
	return m.Called(ctx, chatID).Error(0)
}

type memStats struct {
	*storage.ChatStorage
}

func (s memStats) Stats(ctx context.Context, chatID int64) (*entities.AnswerStats, error) {
	return s.ChatStorage.Stats(ctx, chatID, time.Time{})
}

// scriptedClient serves questions in order and answers with fixed indexes.
type scriptedClient struct {
	mu        sync.Mutex
	questions []*entities.Question
	correct   int
	submitted []string
}

func (c *scriptedClient) FetchQuestion(context.Context) (*entities.QuestionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.questions) == 0 {
		return &entities.QuestionResponse{Success: false, Message: "没有更多问题。"}, nil
	}
	q := c.questions[0]
	c.questions = c.questions[1:]
	return &entities.QuestionResponse{Success: true, Question: q}, nil
}

func (c *scriptedClient) SubmitAnswer(_ context.Context, questionID, answer string) (*entities.AnswerResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted = append(c.submitted, questionID+"="+answer)
	return &entities.AnswerResult{Success: true, CorrectIndex: c.correct}, nil
}

func (c *scriptedClient) SignIn(context.Context, string, string, bool) (*client.SignInResult, error) {
	return &client.SignInResult{}, nil
}

func (c *scriptedClient) Cookies() []entities.Cookie { return nil }

func (c *scriptedClient) answers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.submitted...)
}

func commandUpdate(chatID int64, messageID int, text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: messageID,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 101, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func newTestHandler(bot *fakeBot, chats ChatService, sched scheduler.Scheduler) *Handler {
	return NewHandler(bot, zap.NewNop(), chats, memStats{storage.NewChatStorage()}, sched, time.Second)
}

func TestCallbackData(t *testing.T) {
	data := buildExamOptionCallback("118", 2)
	assert.Equal(t, "exam:118:2", data)

	qid, idx, ok := parseExamOption(decodeCallback(data))
	require.True(t, ok)
	assert.Equal(t, "118", qid)
	assert.Equal(t, 2, idx)

	qid, idx, ok = parseExamOption(decodeCallback("exam:a:b:3"))
	require.True(t, ok)
	assert.Equal(t, "a:b", qid)
	assert.Equal(t, 3, idx)

	for _, bad := range []string{"exam", "exam:1", "exam:1:x", "exam:1:-1", "exam::1", "name:1:2"} {
		_, _, ok := parseExamOption(decodeCallback(bad))
		assert.False(t, ok, bad)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("あ", 5000)
	got := truncate(long, maxMessageLength)
	assert.Equal(t, maxMessageLength, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, truncationMark))
}

func TestFormatQuestion(t *testing.T) {
	q := &entities.Question{
		ID:          "1",
		Term:        "勉強",
		WordClasses: []string{"名词"},
		Meanings:    []string{"学习"},
	}

	text := formatQuestion(q, entities.FamiliarityLabel(0.25))
	assert.Equal(t, "*勉強*\n_名词_\n1\\. 学习\n\n熟悉度：★★★★★★★ 0\\.25", text)
}

func TestChatRenderer(t *testing.T) {
	bot := newFakeBot()
	messages := storage.NewMessageStorage()
	r := newChatRenderer(7, bot, messages, zap.NewNop())

	q := &entities.Question{ID: "118", Term: "猫", Options: []string{"ねこ", "いぬ", "とり"}}
	r.RenderQuestion(q, "熟悉度：☆ 1")

	require.Len(t, bot.sent, 1)
	msg := bot.sent[0].(tgbotapi.MessageConfig)
	kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "2.いぬ", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "exam:118:1", *kb.InlineKeyboard[1][0].CallbackData)

	cur, ok := messages.Get(7)
	require.True(t, ok)
	assert.Equal(t, 101, cur.MessageID)

	r.MarkOption(0, entities.MarkWrong)
	r.MarkOption(2, entities.MarkCorrect)
	r.MarkOption(9, entities.MarkCorrect)

	edits := bot.edits()
	require.Len(t, edits, 2)
	last := edits[1]
	assert.Equal(t, 101, last.MessageID)
	assert.Equal(t, "❌ 1.ねこ", last.ReplyMarkup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "2.いぬ", last.ReplyMarkup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "✅ 3.とり", last.ReplyMarkup.InlineKeyboard[2][0].Text)

	r.RenderQuestion(&entities.Question{ID: "119", Term: "犬", Options: []string{"いぬ", "ねこ"}}, "")
	edits = bot.edits()
	require.Len(t, edits, 3)
	assert.Equal(t, 101, edits[2].MessageID)
	assert.Empty(t, edits[2].ReplyMarkup.InlineKeyboard)
	cur, ok = messages.Get(7)
	require.True(t, ok)
	assert.Equal(t, 102, cur.MessageID)
	assert.Equal(t, "119", cur.QuestionID)

	r.ReplacePage(strings.Repeat("x", 5000))
	texts := bot.texts()
	assert.Len(t, []rune(texts[len(texts)-1]), maxMessageLength)
	_, ok = messages.Get(7)
	assert.False(t, ok)
}

func TestHandler_SignInDeletesMessage(t *testing.T) {
	bot := newFakeBot()
	chats := new(mockChatService)
	chats.On("SignIn", mock.Anything, int64(7), "yuki", "secret").Return("登录成功。", nil).Once()

	h := newTestHandler(bot, chats, scheduler.NewManual())
	h.handleUpdate(context.Background(), commandUpdate(7, 55, "/signin yuki secret"))

	require.NotEmpty(t, bot.requested())
	del, ok := bot.requested()[0].(tgbotapi.DeleteMessageConfig)
	require.True(t, ok)
	assert.Equal(t, 55, del.MessageID)
	assert.Equal(t, []string{"登录成功。"}, bot.texts())
	chats.AssertExpectations(t)
}

func TestHandler_UserFacingErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *mockChatService)
		text  string
		want  string
	}{
		{
			name: "signin usage",
			text: "/signin yuki",
			want: msgSignInUsage,
		},
		{
			name: "signin rejected",
			setup: func(m *mockChatService) {
				m.On("SignIn", mock.Anything, int64(7), "yuki", "bad").
					Return("", &client.RejectedError{Message: "用户名或密码错误。"})
			},
			text: "/signin yuki bad",
			want: "用户名或密码错误。",
		},
		{
			name: "exam before signin",
			setup: func(m *mockChatService) {
				m.On("ClientFor", mock.Anything, int64(7)).Return(nil, service.ErrNotSignedIn)
			},
			text: "/exam",
			want: msgNotSignedIn,
		},
		{
			name: "stop without session",
			text: "/stop",
			want: msgNoSession,
		},
		{
			name: "unknown",
			text: "/what",
			want: msgUnknownCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := newFakeBot()
			chats := new(mockChatService)
			if tt.setup != nil {
				tt.setup(chats)
			}

			h := newTestHandler(bot, chats, scheduler.NewManual())
			h.handleUpdate(context.Background(), commandUpdate(7, 1, tt.text))

			assert.Equal(t, []string{tt.want}, bot.texts())
		})
	}
}

func TestHandler_ExamSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := newFakeBot()
	api := &scriptedClient{
		questions: []*entities.Question{
			{ID: "1", Term: "猫", Options: []string{"ねこ", "いぬ"}},
			{ID: "2", Term: "犬", Options: []string{"ねこ", "いぬ"}},
		},
		correct: 1,
	}
	chats := new(mockChatService)
	chats.On("ClientFor", mock.Anything, int64(7)).Return(api, nil)
	sched := scheduler.NewManual()

	h := newTestHandler(bot, chats, sched)
	h.handleUpdate(ctx, commandUpdate(7, 1, "/exam"))

	require.Eventually(t, func() bool {
		s, ok := h.sessions.Get(7)
		return ok && s.Controller.Snapshot().Question != nil
	}, time.Second, 5*time.Millisecond)

	h.handleUpdate(ctx, commandUpdate(7, 2, "/exam"))
	assert.Contains(t, bot.texts(), msgSessionRunning)

	// A stale button for another question is ignored, the digit message is not.
	h.handleUpdate(ctx, callbackUpdate(7, "exam:99:0"))
	h.handleUpdate(ctx, textUpdate(7, "21"))

	require.Eventually(t, func() bool { return len(bot.edits()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"1=1"}, api.answers())

	require.Eventually(t, func() bool { return sched.Pending() == 1 }, time.Second, 5*time.Millisecond)
	sched.Advance(time.Second)

	require.Eventually(t, func() bool {
		s, ok := h.sessions.Get(7)
		return ok && s.Controller.Snapshot().Question != nil && s.Controller.Snapshot().Question.ID == "2"
	}, time.Second, 5*time.Millisecond)

	h.handleUpdate(ctx, callbackUpdate(7, "exam:2:0"))
	require.Eventually(t, func() bool { return sched.Pending() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"1=1", "2=0"}, api.answers())
	edits := bot.edits()
	require.Len(t, edits, 4, "first mark, old keyboard removed, two marks for the second question")
	assert.Equal(t, 101, edits[1].MessageID)
	assert.Empty(t, edits[1].ReplyMarkup.InlineKeyboard)

	h.handleUpdate(ctx, commandUpdate(7, 3, "/stop"))
	assert.Contains(t, bot.texts(), msgSessionStopped)
	_, ok := h.sessions.Get(7)
	assert.False(t, ok)

	h.handleUpdate(ctx, commandUpdate(7, 4, "/stats"))
	texts := bot.texts()
	assert.Contains(t, texts[len(texts)-1], "累计答题：2")
}

func TestHandler_KeysDoNotBlockUpdates(t *testing.T) {
	bot := newFakeBot()
	h := newTestHandler(bot, new(mockChatService), scheduler.NewManual())

	// The controller is never run, so its event queue fills up.
	ctrl := exam.NewController("s", &scriptedClient{}, newChatRenderer(7, bot, h.messages, zap.NewNop()),
		scheduler.NewManual(), zap.NewNop())
	require.True(t, h.sessions.StoreIfAbsent(7, &storage.Session{Controller: ctrl, Cancel: func() {}, StartedAt: time.Now()}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.handleUpdate(context.Background(), textUpdate(7, "1234"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "key messages blocked the update loop")
	}
}
