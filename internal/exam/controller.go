package exam

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
	"github.com/aliskhannn/nihonngo-exam/internal/scheduler"
)

// ErrSessionTerminated is returned by Run after a transport failure.
var ErrSessionTerminated = errors.New("exam session terminated")

const eventBuffer = 16

// API is the server side of an exam session.
type API interface {
	FetchQuestion(ctx context.Context) (*entities.QuestionResponse, error)
	SubmitAnswer(ctx context.Context, questionID, answer string) (*entities.AnswerResult, error)
}

// Renderer displays the session.
type Renderer interface {
	RenderQuestion(q *entities.Question, familiarity string)
	MarkOption(index int, mark entities.OptionMark)
	ShowMessage(text string)
	ReplacePage(body string)
}

// Journal stores answered questions.
type Journal interface {
	Record(ctx context.Context, rec *entities.AnswerRecord) error
}

// BodyCarrier is implemented by errors that carry a raw response body.
type BodyCarrier interface {
	ResponseBody() string
}

// Controller runs one exam session. Its state is only touched by the Run
// goroutine; network calls and timers report back through Post.
type Controller struct {
	id        string
	chatID    int64
	api       API
	renderer  Renderer
	scheduler scheduler.Scheduler
	journal   Journal
	machine   Machine
	logger    *zap.Logger

	events chan Event
	done   chan struct{}

	mu       sync.RWMutex
	snapshot entities.SessionState

	state    entities.SessionState
	failure  error
	stopOnce sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithJournal records every verdict in j.
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithChatID tags journal entries with a telegram chat.
func WithChatID(chatID int64) Option {
	return func(c *Controller) { c.chatID = chatID }
}

// WithMachine overrides the transition rules.
func WithMachine(m Machine) Option {
	return func(c *Controller) { c.machine = m }
}

// NewController creates a controller for one session identified by id.
func NewController(
	id string,
	api API,
	renderer Renderer,
	sched scheduler.Scheduler,
	logger *zap.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		id:        id,
		api:       api,
		renderer:  renderer,
		scheduler: sched,
		machine:   NewMachine(DefaultAdvanceDelay),
		logger:    logger.With(zap.String("session_id", id)),
		events:    make(chan Event, eventBuffer),
		done:      make(chan struct{}),
		state:     entities.NewSessionState(),
		snapshot:  entities.NewSessionState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the session id.
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() entities.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Post queues an event. Events posted after Run has returned are dropped.
func (c *Controller) Post(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// TryPost queues an event without waiting. It reports false when the
// queue is full or the session has finished.
func (c *Controller) TryPost(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run starts the session and processes events until ctx is cancelled or
// the session terminates.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.done) })

	c.logger.Info("exam session started")
	defer c.logger.Info("exam session stopped")

	c.handle(ctx, Started{})

	for {
		if c.state.Phase == entities.PhaseTerminated {
			if c.failure == nil {
				return ErrSessionTerminated
			}
			return fmt.Errorf("%w: %w", ErrSessionTerminated, c.failure)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

func (c *Controller) handle(ctx context.Context, ev Event) {
	if f, ok := ev.(TransportFailed); ok {
		c.failure = f.Err
	}

	next, effects := c.machine.Transition(c.state, ev)
	if next.Phase != c.state.Phase {
		c.logger.Debug("session phase changed",
			zap.Stringer("from", c.state.Phase),
			zap.Stringer("to", next.Phase),
		)
	}

	c.state = next
	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	for _, eff := range effects {
		c.apply(ctx, eff)
	}
}

func (c *Controller) apply(ctx context.Context, eff Effect) {
	switch e := eff.(type) {
	case FetchQuestion:
		go c.fetchQuestion(ctx)

	case SubmitAnswer:
		go c.submitAnswer(ctx, e)

	case RenderQuestion:
		c.logger.Debug("rendering question",
			zap.String("question_id", e.Question.ID),
			zap.Int("options", e.Question.OptionCount()),
		)
		c.renderer.RenderQuestion(e.Question, e.Familiarity)

	case MarkOption:
		c.renderer.MarkOption(e.Index, e.Mark)

	case ShowMessage:
		c.logger.Info("server rejected request", zap.String("message", e.Text))
		c.renderer.ShowMessage(e.Text)

	case ScheduleNext:
		c.scheduler.AfterFunc(e.Delay, func() { c.Post(NextQuestionDue{}) })

	case RecordAnswer:
		c.recordAnswer(ctx, e)

	case ReplacePage:
		c.logger.Error("transport failure, replacing page", zap.Error(c.failure))
		c.renderer.ReplacePage(e.Body)
	}
}

func (c *Controller) fetchQuestion(ctx context.Context) {
	resp, err := c.api.FetchQuestion(ctx)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	c.Post(QuestionLoaded{Response: resp})
}

func (c *Controller) submitAnswer(ctx context.Context, e SubmitAnswer) {
	c.logger.Debug("submitting answer",
		zap.String("question_id", e.QuestionID),
		zap.String("answer", e.Answer),
	)

	res, err := c.api.SubmitAnswer(ctx, e.QuestionID, e.Answer)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	c.Post(AnswerReceived{Index: e.Index, Result: res})
}

func (c *Controller) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}

	body := err.Error()
	var bc BodyCarrier
	if errors.As(err, &bc) && bc.ResponseBody() != "" {
		body = bc.ResponseBody()
	}
	c.Post(TransportFailed{Body: body, Err: err})
}

func (c *Controller) recordAnswer(ctx context.Context, e RecordAnswer) {
	c.logger.Info("answer verdict",
		zap.Int("chosen", e.Chosen),
		zap.Int("correct", e.CorrectIndex),
	)

	if c.journal == nil {
		return
	}

	rec := entities.NewAnswerRecord(c.id, e.Question, e.Chosen, e.CorrectIndex)
	rec.ChatID = c.chatID
	if err := c.journal.Record(ctx, rec); err != nil {
		c.logger.Error("failed to record answer", zap.Error(err))
	}
}
