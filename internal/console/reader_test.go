package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan Input) []Input {
	t.Helper()
	var got []Input
	timeout := time.After(2 * time.Second)
	for {
		select {
		case in, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, in)
		case <-timeout:
			t.Fatal("reader did not close its channel")
		}
	}
}

func TestReadLines_TrimsLineEndings(t *testing.T) {
	got := collect(t, ReadLines(context.Background(), strings.NewReader("stocks\r\nlist\n\nquit")))
	require.Len(t, got, 4)
	assert.Equal(t, []string{"stocks", "list", "", "quit"},
		[]string{got[0].Text, got[1].Text, got[2].Text, got[3].Text})
	for _, in := range got {
		assert.NoError(t, in.Err)
	}
}

func TestReadLines_OverlongLineIsReportedAndSkipped(t *testing.T) {
	input := strings.Repeat("x", 70*1024) + "\nstocks\n" + strings.Repeat("y", MaxLineBytes+1)
	got := collect(t, ReadLines(context.Background(), strings.NewReader(input)))
	require.Len(t, got, 3)

	var tooLong *LineTooLongError
	require.ErrorAs(t, got[0].Err, &tooLong)
	assert.Equal(t, MaxLineBytes, tooLong.Limit)
	assert.Equal(t, "stocks", got[1].Text)
	assert.ErrorAs(t, got[2].Err, &tooLong, "a long final line without newline is reported too")
}

func TestReadLines_ReadErrorIsSentBeforeClose(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("stocks\n"), iotest.ErrReader(boom))
	got := collect(t, ReadLines(context.Background(), r))
	require.Len(t, got, 2)
	assert.Equal(t, "stocks", got[0].Text)
	assert.ErrorIs(t, got[1].Err, boom)
}

type endlessReader struct{}

func (endlessReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = "a\n"[i%2]
	}
	return len(p), nil
}

func TestReadLines_ExitsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := ReadLines(ctx, endlessReader{})
	<-ch
	cancel()

	// The goroutine may still win a few sends before it sees ctx.
	for range ch {
	}
}
