package exam

import "github.com/aliskhannn/nihonngo-exam/internal/domain/entities"

// Event is an input to the session state machine.
type Event interface {
	isEvent()
}

// Started begins the session.
type Started struct{}

// NextQuestionDue fires when the post-verdict pause is over.
type NextQuestionDue struct{}

// QuestionLoaded carries the server reply to a question request.
type QuestionLoaded struct {
	Response *entities.QuestionResponse
}

// OptionSelected is a click on an option. QuestionID, when set, names the
// question the option was rendered for.
type OptionSelected struct {
	Index      int
	QuestionID string
}

// KeyPressed is a key press with its key code ('1' is 49).
type KeyPressed struct {
	Code int
}

// AnswerReceived carries the verdict for the submitted option.
type AnswerReceived struct {
	Index  int
	Result *entities.AnswerResult
}

// TransportFailed reports an unrecoverable request failure with the raw
// response body.
type TransportFailed struct {
	Body string
	Err  error
}

func (Started) isEvent()         {}
func (NextQuestionDue) isEvent() {}
func (QuestionLoaded) isEvent()  {}
func (OptionSelected) isEvent()  {}
func (KeyPressed) isEvent()      {}
func (AnswerReceived) isEvent()  {}
func (TransportFailed) isEvent() {}
