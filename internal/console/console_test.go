package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockMon/internal/domain/models"
	"StockMon/pkg/signal"
)

func newTestConsole(vm *vmStub, in io.Reader, out io.Writer, shutdowns *atomic.Int32) *Console {
	return New(signal.NewLoop("fg"), vm, map[string]string{"ABC": "ABC Corp"}, in, out,
		WithShutdown(func() { shutdowns.Add(1) }),
	)
}

func runWithTimeout(t *testing.T, c *Console) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Run(ctx)
}

func TestConsole_QuitShutsDownOnce(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	c := newTestConsole(newVMStub(), strings.NewReader("quit\nstocks\n"), &out, &shutdowns)

	require.NoError(t, runWithTimeout(t, c))
	assert.Equal(t, int32(1), shutdowns.Load())
	assert.Contains(t, out.String(), "Exiting...")
	assert.NotContains(t, out.String(), "Available Stocks", "loop exits after the quit cycle")
}

func TestConsole_EOFShutsDownOnce(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	c := newTestConsole(newVMStub(), strings.NewReader("list\n"), &out, &shutdowns)

	require.NoError(t, runWithTimeout(t, c))
	assert.Equal(t, int32(1), shutdowns.Load())
	assert.Contains(t, out.String(), "No alerts set")
}

func TestConsole_InterruptShutsDownOnce(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	pr, pw := io.Pipe()
	defer pw.Close()
	c := newTestConsole(newVMStub(), pr, &out, &shutdowns)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return on cancel")
	}
	assert.Equal(t, int32(1), shutdowns.Load())
}

func TestConsole_OverlongLineKeepsSessionOpen(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	input := strings.Repeat("x", 70*1024) + "\nstocks\nquit\n"
	c := newTestConsole(newVMStub(), strings.NewReader(input), &out, &shutdowns)

	require.NoError(t, runWithTimeout(t, c))
	s := out.String()
	assert.Contains(t, s, "Input line too long")
	assert.Contains(t, s, "Available Stocks:")
	assert.Contains(t, s, "Exiting...")
	assert.Equal(t, 3, strings.Count(s, "===== MENU ====="))
	assert.Equal(t, int32(1), shutdowns.Load())
}

func TestConsole_ReadErrorEndsSession(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	boom := errors.New("boom")
	in := io.MultiReader(strings.NewReader("list\n"), iotest.ErrReader(boom))
	c := newTestConsole(newVMStub(), in, &out, &shutdowns)

	err := runWithTimeout(t, c)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, out.String(), "No alerts set")
	assert.Equal(t, int32(1), shutdowns.Load())
}

func TestConsole_ShowPricesThenAnyLineReturnsToMenu(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	c := newTestConsole(newVMStub(), strings.NewReader("showprices\nanything\nquit\n"), &out, &shutdowns)

	require.NoError(t, runWithTimeout(t, c))

	s := out.String()
	assert.Equal(t, 2, strings.Count(s, "===== MENU ====="))
	assert.Contains(t, s, "Now showing price updates. Press Enter to return to menu.")
	assert.NotContains(t, s, "Unknown command: anything", "the line only leaves live display")
	assert.Equal(t, StateMenu, c.State())
}

func TestConsole_UnknownCommandStaysInMenu(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	c := newTestConsole(newVMStub(), strings.NewReader("dance\nquit\n"), &out, &shutdowns)

	require.NoError(t, runWithTimeout(t, c))
	assert.Contains(t, out.String(), "Unknown command: dance")
	assert.Equal(t, 2, strings.Count(out.String(), "===== MENU ====="))
}

func TestConsole_InvalidAlertDoesNotEmit(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	vm := newVMStub()
	vm.prices["XYZ"] = models.StockPrice{Code: "XYZ", Price: 5}
	c := newTestConsole(vm, strings.NewReader(""), &out, &shutdowns)

	c.Handle("alert XYZ abc 10")
	assert.Contains(t, out.String(), "Invalid price values")
	assert.Empty(t, vm.sets)
	assert.Equal(t, StateMenu, c.State())

	c.Handle("alert xyz 1 10")
	assert.Contains(t, out.String(), "Alert set for XYZ: lower=1 upper=10")
	assert.Len(t, vm.sets, 1)
}

func TestConsole_PricesRenderedOnlyInLiveDisplay(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	vm := newVMStub()
	vm.settings["ABC"] = models.AlertSetting{Code: "ABC", Lower: ptr(100), Upper: ptr(200)}
	c := newTestConsole(vm, strings.NewReader(""), &out, &shutdowns)

	prices := models.PriceMap{"ABC": {Code: "ABC", Price: 210}}
	require.NoError(t, c.OnPricesUpdated(prices))
	assert.NotContains(t, out.String(), "Current Prices")

	c.Handle("showprices")
	require.NoError(t, c.OnPricesUpdated(prices))
	assert.Contains(t, out.String(), "ABC $210.00 (+0.00%)")
	assert.Contains(t, out.String(), "ABC price ($210.00) above $200.00")
}

func TestConsole_QueuedUpdatesRenderWhileWaitingForInput(t *testing.T) {
	var out syncBuffer
	var shutdowns atomic.Int32
	pr, pw := io.Pipe()
	c := newTestConsole(newVMStub(), pr, &out, &shutdowns)

	feed := signal.New[models.PriceMap](nil, "test.prices")
	conn, err := signal.Connect(feed, c, signal.Sync((*Console).OnPricesUpdated))
	require.NoError(t, err)
	assert.Equal(t, signal.Queued, conn.Mode())

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	_, err = io.WriteString(pw, "showprices\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Now showing price updates")
	}, time.Second, 5*time.Millisecond)

	feed.Emit(models.PriceMap{"ABC": {Code: "ABC", Price: 12.5, Change: -2}})
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "ABC $12.50 (-2.00%)")
	}, time.Second, 5*time.Millisecond)

	_, err = io.WriteString(pw, "\nquit\n")
	require.NoError(t, err)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not exit")
	}
	_ = pw.Close()
	assert.Equal(t, int32(1), shutdowns.Load())
}
