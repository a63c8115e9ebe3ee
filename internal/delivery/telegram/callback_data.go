package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionExam = "exam"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildExamOptionCallback builds callback data for choosing an option of a question.
func buildExamOptionCallback(questionID string, index int) string {
	return callbackData{
		Action: actionExam,
		Params: []string{questionID, strconv.Itoa(index)},
	}.encode()
}

// parseExamOption extracts the question id and option index of an exam callback.
// The question id may itself contain colons.
func parseExamOption(cd callbackData) (questionID string, index int, ok bool) {
	if cd.Action != actionExam || len(cd.Params) < 2 {
		return "", 0, false
	}

	last := len(cd.Params) - 1
	index, err := strconv.Atoi(cd.Params[last])
	if err != nil || index < 0 {
		return "", 0, false
	}

	questionID = strings.Join(cd.Params[:last], ":")
	if questionID == "" {
		return "", 0, false
	}
	return questionID, index, true
}
