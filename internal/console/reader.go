package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineBytes is the longest input line the console accepts. Longer lines
// are discarded and reported as a LineTooLongError.
const MaxLineBytes = 64 * 1024

// LineTooLongError reports an input line over MaxLineBytes.
type LineTooLongError struct {
	Limit int
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("Input line too long (limit %d bytes)", e.Limit)
}

// Input is one line read from the console, or the error that replaced it.
type Input struct {
	Text string
	Err  error
}

// ReadLines reads r on its own goroutine and sends each line, without the
// trailing newline, on the returned channel. An over-long line is sent as an
// Input carrying a LineTooLongError and reading goes on. A read error other
// than EOF is sent before the channel closes. The goroutine exits when ctx is
// done, except while it is blocked inside r.Read.
func ReadLines(ctx context.Context, r io.Reader) <-chan Input {
	out := make(chan Input)
	go func() {
		defer close(out)
		br := bufio.NewReaderSize(r, MaxLineBytes)
		for {
			in, err := readLine(br)
			if in != nil && !send(ctx, out, *in) {
				return
			}
			if err == nil {
				continue
			}
			if !errors.Is(err, io.EOF) {
				send(ctx, out, Input{Err: err})
			}
			return
		}
	}()
	return out
}

func send(ctx context.Context, out chan<- Input, in Input) bool {
	select {
	case out <- in:
		return true
	case <-ctx.Done():
		return false
	}
}

// readLine returns the next line, if any, together with the error that ended
// it. A nil error means more input may follow.
func readLine(br *bufio.Reader) (*Input, error) {
	line, err := br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = br.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return &Input{Err: &LineTooLongError{Limit: MaxLineBytes}}, err
	}
	if len(line) == 0 {
		return nil, err
	}
	text := strings.TrimSuffix(string(line), "\n")
	text = strings.TrimSuffix(text, "\r")
	return &Input{Text: text}, err
}
