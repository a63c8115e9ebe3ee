package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

// wordClassSeparator joins word classes when the server sends them as one string.
const wordClassSeparator = "，"

// token accepts a JSON string or number and keeps it as an opaque string.
type token string

func (t *token) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = token(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	*t = token(n.String())
	return nil
}

// labels accepts either a list of strings or a single "，"-joined string.
type labels []string

func (l *labels) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	if joined == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(joined, wordClassSeparator)
	return nil
}

type questionPayload struct {
	QuestionID    token    `json:"question_id"`
	QuestionType  int      `json:"question_type"`
	Kannji        string   `json:"kannji"`
	WordClasses   labels   `json:"word_classes"`
	Meanings      []string `json:"meanings"`
	Unfamiliarity float64  `json:"unfamiliarity"`
	Options       []string `json:"question"`
}

type questionEnvelope struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Question *questionPayload `json:"question"`
}

func (e questionEnvelope) toEntity() *entities.QuestionResponse {
	resp := &entities.QuestionResponse{
		Success: e.Success,
		Message: e.Message,
	}
	if e.Question == nil {
		return resp
	}

	p := e.Question
	resp.Question = &entities.Question{
		ID:            string(p.QuestionID),
		Type:          entities.QuestionType(p.QuestionType),
		Term:          p.Kannji,
		WordClasses:   []string(p.WordClasses),
		Meanings:      p.Meanings,
		Unfamiliarity: p.Unfamiliarity,
		Options:       p.Options,
	}
	return resp
}

type answerEnvelope struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	CorrectAnswer token  `json:"correct_answer"`
}

func (e answerEnvelope) toEntity() (*entities.AnswerResult, error) {
	res := &entities.AnswerResult{
		Success: e.Success,
		Message: e.Message,
	}
	if !e.Success {
		return res, nil
	}

	idx, err := strconv.Atoi(strings.TrimSpace(string(e.CorrectAnswer)))
	if err != nil {
		return nil, fmt.Errorf("parse correct answer %q: %w", e.CorrectAnswer, err)
	}
	res.CorrectIndex = idx
	return res, nil
}

type signInEnvelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	SetCookies map[string]string `json:"set_cookies"`
	Redirect   string            `json:"redirect"`
}
