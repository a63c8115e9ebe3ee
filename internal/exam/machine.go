package exam

import (
	"strconv"
	"time"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

// DefaultAdvanceDelay is the pause between a verdict and the next question.
const DefaultAdvanceDelay = time.Second

const (
	keyDigitOne  = 49 // '1'
	keyDigitNine = 57 // '9'
)

// Machine holds the transition rules of an exam session.
type Machine struct {
	AdvanceDelay time.Duration
}

// NewMachine creates a machine with the given pause between questions.
// A non-positive delay selects DefaultAdvanceDelay.
func NewMachine(advanceDelay time.Duration) Machine {
	if advanceDelay <= 0 {
		advanceDelay = DefaultAdvanceDelay
	}
	return Machine{AdvanceDelay: advanceDelay}
}

// Transition applies ev to s and returns the next state together with the
// effects to run. It never mutates s.
func (m Machine) Transition(s entities.SessionState, ev Event) (entities.SessionState, []Effect) {
	if s.Phase == entities.PhaseTerminated {
		return s, nil
	}

	switch e := ev.(type) {
	case Started:
		if s.Phase != entities.PhaseIdle {
			return s, nil
		}
		return m.fetchNext(s)

	case NextQuestionDue:
		if s.Phase != entities.PhaseRevealed {
			return s, nil
		}
		return m.fetchNext(s)

	case QuestionLoaded:
		return m.questionLoaded(s, e)

	case KeyPressed:
		index, ok := OptionIndexForKey(e.Code, s.OptionCount)
		if !ok {
			return s, nil
		}
		return m.selectOption(s, index, "")

	case OptionSelected:
		return m.selectOption(s, e.Index, e.QuestionID)

	case AnswerReceived:
		return m.answerReceived(s, e)

	case TransportFailed:
		next := entities.NewSessionState()
		next.Phase = entities.PhaseTerminated
		return next, []Effect{ReplacePage{Body: e.Body}}
	}

	return s, nil
}

// fetchNext clears the active question and requests a new one.
// The lock is kept until a question actually arrives.
func (m Machine) fetchNext(s entities.SessionState) (entities.SessionState, []Effect) {
	s.Phase = entities.PhaseLoading
	s.Question = nil
	s.OptionCount = 0
	s.Selected = entities.NoSelection
	return s, []Effect{FetchQuestion{}}
}

func (m Machine) questionLoaded(s entities.SessionState, e QuestionLoaded) (entities.SessionState, []Effect) {
	if s.Phase != entities.PhaseLoading || e.Response == nil {
		return s, nil
	}

	resp := e.Response
	if !resp.Success {
		return s, []Effect{ShowMessage{Text: resp.Message}}
	}

	q := resp.Question
	if q == nil || q.Type != entities.QuestionTypeKana {
		return s, nil
	}

	s.Phase = entities.PhaseDisplayed
	s.Question = q
	s.OptionCount = q.OptionCount()
	s.Locked = false
	s.Selected = entities.NoSelection

	return s, []Effect{RenderQuestion{
		Question:    q,
		Familiarity: entities.FamiliarityLabel(q.Unfamiliarity),
	}}
}

func (m Machine) selectOption(s entities.SessionState, index int, questionID string) (entities.SessionState, []Effect) {
	if s.Phase != entities.PhaseDisplayed || !s.AcceptsSelection(index) {
		return s, nil
	}
	if questionID != "" && questionID != s.Question.ID {
		return s, nil
	}

	s.Phase = entities.PhaseSubmitting
	s.Locked = true
	s.Selected = index

	return s, []Effect{SubmitAnswer{
		QuestionID: s.Question.ID,
		Index:      index,
		Answer:     strconv.Itoa(index),
	}}
}

func (m Machine) answerReceived(s entities.SessionState, e AnswerReceived) (entities.SessionState, []Effect) {
	if s.Phase != entities.PhaseSubmitting || e.Result == nil || e.Index != s.Selected {
		return s, nil
	}

	res := e.Result
	if !res.Success {
		// The answer stays locked; the session does not advance.
		s.Phase = entities.PhaseDisplayed
		return s, []Effect{ShowMessage{Text: res.Message}}
	}

	var effects []Effect
	if res.CorrectIndex == e.Index {
		effects = append(effects, MarkOption{Index: e.Index, Mark: entities.MarkCorrect})
	} else {
		effects = append(effects,
			MarkOption{Index: e.Index, Mark: entities.MarkWrong},
			MarkOption{Index: res.CorrectIndex, Mark: entities.MarkCorrect},
		)
	}

	effects = append(effects,
		RecordAnswer{Question: s.Question, Chosen: e.Index, CorrectIndex: res.CorrectIndex},
		ScheduleNext{Delay: m.AdvanceDelay},
	)

	s.Phase = entities.PhaseRevealed
	return s, effects
}

// OptionIndexForKey maps a digit key code to a zero-based option index.
// Only the digits 1-9 within the option count are accepted.
func OptionIndexForKey(code, optionCount int) (int, bool) {
	if code < keyDigitOne || code > keyDigitNine {
		return 0, false
	}
	index := code - keyDigitOne
	if index >= optionCount {
		return 0, false
	}
	return index, true
}
