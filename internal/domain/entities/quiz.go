package entities

import "time"

// Phase is the position of an exam session in its request/response cycle.
type Phase int

const (
	PhaseIdle       Phase = iota // not started yet
	PhaseLoading                 // waiting for the next question
	PhaseDisplayed               // question shown, waiting for a selection
	PhaseSubmitting              // answer sent, waiting for the verdict
	PhaseRevealed                // verdict shown, next question scheduled
	PhaseTerminated              // transport failure, session is over
)

var phaseNames = map[Phase]string{
	PhaseIdle:       "idle",
	PhaseLoading:    "loading",
	PhaseDisplayed:  "displayed",
	PhaseSubmitting: "submitting",
	PhaseRevealed:   "revealed",
	PhaseTerminated: "terminated",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// NoSelection marks a session state without a pending selection.
const NoSelection = -1

// SessionState is the mutable state of one exam session.
// It is owned by a single controller and only changed by its transition function.
type SessionState struct {
	Phase       Phase
	Question    *Question // active question, nil while loading
	Locked      bool      // set once an answer is submitted for the active question
	OptionCount int       // number of options of the active question
	Selected    int       // submitted option index or NoSelection
}

// NewSessionState returns the state of a session that has not started.
func NewSessionState() SessionState {
	return SessionState{
		Phase:    PhaseIdle,
		Selected: NoSelection,
	}
}

// AcceptsSelection reports whether an option index may be submitted now.
func (s SessionState) AcceptsSelection(index int) bool {
	return s.Question != nil && !s.Locked && index >= 0 && index < s.OptionCount
}

// OptionMark is the verdict decoration applied to an option.
type OptionMark string

const (
	MarkCorrect OptionMark = "correct"
	MarkWrong   OptionMark = "wrong"
)

// AnswerRecord is a journal entry for one answered question.
type AnswerRecord struct {
	ID           int64
	ChatID       int64  // telegram chat, 0 for the terminal client
	SessionID    string // controller session id
	QuestionID   string
	Term         string
	Chosen       int
	CorrectIndex int
	IsCorrect    bool
	AnsweredAt   time.Time
}

// NewAnswerRecord builds a journal entry for a verdict on question q.
func NewAnswerRecord(sessionID string, q *Question, chosen, correct int) *AnswerRecord {
	rec := &AnswerRecord{
		SessionID:    sessionID,
		Chosen:       chosen,
		CorrectIndex: correct,
		IsCorrect:    chosen == correct,
		AnsweredAt:   time.Now(),
	}
	if q != nil {
		rec.QuestionID = q.ID
		rec.Term = q.Term
	}
	return rec
}

// AnswerStats summarizes journal entries.
type AnswerStats struct {
	Total         int
	Correct       int
	AnsweredToday int
}

// Accuracy returns the share of correct answers in percent.
func (s AnswerStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}
