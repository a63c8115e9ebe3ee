// Package terminal runs an exam session on a text terminal.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aliskhannn/nihonngo-exam/internal/domain/entities"
)

const clearScreen = "\033[H\033[2J"

var markSymbols = map[entities.OptionMark]string{
	entities.MarkCorrect: "✔",
	entities.MarkWrong:   "✘",
}

// Renderer draws the question screen on an io.Writer.
type Renderer struct {
	mu    sync.Mutex
	out   io.Writer
	q     *entities.Question
	marks map[int]entities.OptionMark
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RenderQuestion clears the screen and draws q.
func (r *Renderer) RenderQuestion(q *entities.Question, familiarity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.q = q
	r.marks = make(map[int]entities.OptionMark)

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(q.Term + "\n")
	if len(q.WordClasses) > 0 {
		b.WriteString(strings.Join(q.WordClasses, "，") + "\n")
	}
	for i, m := range q.Meanings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m)
	}
	b.WriteString(familiarity + "\n\n")
	r.writeOptions(&b)

	_, _ = io.WriteString(r.out, b.String())
}

// MarkOption redraws the option list with the verdict for index.
func (r *Renderer) MarkOption(index int, mark entities.OptionMark) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.q == nil || index < 0 || index >= r.q.OptionCount() {
		return
	}
	r.marks[index] = mark

	var b strings.Builder
	b.WriteString("\n")
	r.writeOptions(&b)
	_, _ = io.WriteString(r.out, b.String())
}

// ShowMessage prints a server message below the question.
func (r *Renderer) ShowMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "\n%s\n", text)
}

// ReplacePage clears the screen and prints body as is.
func (r *Renderer) ReplacePage(body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.q = nil
	r.marks = nil
	_, _ = io.WriteString(r.out, clearScreen+body+"\n")
}

func (r *Renderer) writeOptions(b *strings.Builder) {
	for i, opt := range r.q.Options {
		prefix := " "
		if m, ok := r.marks[i]; ok {
			prefix = markSymbols[m]
		}
		fmt.Fprintf(b, "%s %d.%s\n", prefix, i+1, opt)
	}
}
