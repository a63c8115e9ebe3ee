package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/aliskhannn/nihonngo-exam/internal/exam"
)

// ErrQuit is returned by Input.Run when the user asks to leave.
var ErrQuit = errors.New("quit requested")

const quitKey = 'q'

// Poster receives session events.
type Poster interface {
	Post(ev exam.Event)
}

// Input turns typed characters into key presses.
type Input struct {
	r    io.Reader
	sink Poster
}

// NewInput creates an input reader posting to sink.
func NewInput(r io.Reader, sink Poster) *Input {
	return &Input{r: r, sink: sink}
}

// Run reads until quit, EOF or ctx cancellation. A blocked read does not
// hold Run up after ctx is done.
func (in *Input) Run(ctx context.Context) error {
	runes := make(chan rune)
	errc := make(chan error, 1)

	go func() {
		br := bufio.NewReader(in.r)
		for {
			ch, _, err := br.ReadRune()
			if err != nil {
				errc <- err
				return
			}
			select {
			case runes <- ch:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return ErrQuit
			}
			return fmt.Errorf("read input: %w", err)
		case ch := <-runes:
			if ch == quitKey {
				return ErrQuit
			}
			if unicode.IsSpace(ch) {
				continue
			}
			in.sink.Post(exam.KeyPressed{Code: int(ch)})
		}
	}
}
