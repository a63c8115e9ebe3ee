package exam

import (
	"time"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

// Effect is an action requested by the state machine.
type Effect interface {
	isEffect()
}

// FetchQuestion requests the next question.
type FetchQuestion struct{}

// RenderQuestion replaces the displayed question.
type RenderQuestion struct {
	Question    *entities.Question
	Familiarity string
}

// SubmitAnswer sends the chosen option. Answer is the index in decimal form.
type SubmitAnswer struct {
	QuestionID string
	Index      int
	Answer     string
}

// MarkOption decorates an option with a verdict.
type MarkOption struct {
	Index int
	Mark  entities.OptionMark
}

// ShowMessage displays a server message.
type ShowMessage struct {
	Text string
}

// ScheduleNext fires NextQuestionDue after Delay.
type ScheduleNext struct {
	Delay time.Duration
}

// RecordAnswer stores a verdict in the answer journal.
type RecordAnswer struct {
	Question     *entities.Question
	Chosen       int
	CorrectIndex int
}

// ReplacePage discards the session display and shows Body instead.
type ReplacePage struct {
	Body string
}

func (FetchQuestion) isEffect()  {}
func (RenderQuestion) isEffect() {}
func (SubmitAnswer) isEffect()   {}
func (MarkOption) isEffect()     {}
func (ShowMessage) isEffect()    {}
func (ScheduleNext) isEffect()   {}
func (RecordAnswer) isEffect()   {}
func (ReplacePage) isEffect()    {}
