package entities

// QuestionType identifies the quiz variant of a question.
type QuestionType int

const (
	// QuestionTypeKana asks for the reading (kana) of a displayed term.
	QuestionTypeKana QuestionType = 0
)

// Question is a single exam question as delivered by the server.
// It is never modified after it has been received.
type Question struct {
	ID            string       // opaque question token
	Type          QuestionType // quiz variant
	Term          string       // displayed kanji/kana string
	WordClasses   []string     // word-class labels
	Meanings      []string     // ordered meanings, displayed 1..N
	Unfamiliarity float64      // server-computed score in [0,1]
	Options       []string     // ordered candidate options
}

// OptionCount returns the number of candidate options.
func (q *Question) OptionCount() int {
	if q == nil {
		return 0
	}
	return len(q.Options)
}

// QuestionResponse is the server reply to a "get question" request.
type QuestionResponse struct {
	Success  bool
	Message  string
	Question *Question // nil when the server did not include one
}

// AnswerResult is the server verdict for a submitted answer.
type AnswerResult struct {
	Success      bool
	CorrectIndex int    // zero-based index of the correct option
	Message      string // user-facing message, mostly set on failure
}
