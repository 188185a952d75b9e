// Package console is the interactive front end. It runs on the foreground
// loop, reads commands line by line and renders price snapshots delivered by
// the view model.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"StockMon/internal/domain/models"
	"StockMon/pkg/logger"
	"StockMon/pkg/signal"
)

// Option configures a Console.
type Option func(*Console)

// WithPrompt sets the menu prompt.
func WithPrompt(p string) Option {
	return func(c *Console) { c.prompt = p }
}

// WithColor enables colored output.
func WithColor(on bool) Option {
	return func(c *Console) { c.colorize = on }
}

// WithShutdown sets the function Run calls exactly once on exit.
func WithShutdown(fn func()) Option {
	return func(c *Console) { c.shutdown = fn }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.log = l.Component("console")
		}
	}
}

// Console is the menu and live display state machine.
type Console struct {
	*signal.Object

	vm       ViewModel
	desc     map[string]string
	tr       *Translator
	render   *Renderer
	in       io.Reader
	prompt   string
	colorize bool
	log      *logger.Logger

	state    State
	running  bool
	shutdown func()
	once     sync.Once
}

// New creates a console bound to the foreground loop. desc maps codes to
// company names for the stocks table.
func New(loop *signal.Loop, vm ViewModel, desc map[string]string, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		Object: signal.NewObject(loop),
		vm:     vm,
		desc:   desc,
		tr:     NewTranslator(vm),
		in:     in,
		prompt: "Command> ",
		log:    logger.Nop(),
		state:  StateMenu,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.render = NewRenderer(out, c.colorize)
	return c
}

// State returns the current mode.
func (c *Console) State() State { return c.state }

// Run drives the read loop until quit, end of input or ctx is done. It keeps
// the foreground loop running while it waits for input, and calls the
// shutdown function exactly once before returning. End of input and quit
// return nil.
func (c *Console) Run(ctx context.Context) error {
	defer c.stop()

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := ReadLines(readCtx, c.in)
	c.running = true
	c.state = StateMenu
	c.log.Info("console started")

	for c.running {
		if c.state == StateMenu {
			c.render.Menu()
			c.render.Prompt(c.prompt)
		}
		in, err := signal.Await(ctx, c.Loop(), lines)
		if err != nil {
			if errors.Is(err, signal.ErrChannelClosed) {
				c.log.Info("end of input")
				return nil
			}
			return err
		}
		if in.Err != nil {
			if err := c.inputFailed(in.Err); err != nil {
				return err
			}
			continue
		}
		c.Handle(in.Text)
	}
	return nil
}

// inputFailed handles a line the reader could not deliver. An over-long line
// is reported and the console goes back to the menu. Any other read error
// ends the session.
func (c *Console) inputFailed(err error) error {
	var tooLong *LineTooLongError
	if errors.As(err, &tooLong) {
		c.log.Warn("input line discarded", logger.Int("limit", tooLong.Limit))
		c.state = StateMenu
		c.render.Error(err)
		return nil
	}
	c.log.Error("read input failed", logger.Error(err))
	return fmt.Errorf("read input: %w", err)
}

// Handle processes one input line.
func (c *Console) Handle(line string) {
	if c.state == StateLiveDisplay {
		c.state = StateMenu
		return
	}

	cmd := Parse(line)
	switch cmd.Kind {
	case CmdEmpty:
	case CmdStocks:
		c.render.Stocks(c.desc, c.vm.CurrentPrices())
	case CmdAlert:
		c.reply(c.tr.SetAlert(cmd.Args))
	case CmdRemove:
		c.reply(c.tr.RemoveAlert(cmd.Args))
	case CmdList:
		c.render.AlertList(c.vm.AlertSettings())
	case CmdShowPrices:
		c.state = StateLiveDisplay
		c.render.Message("Now showing price updates. Press Enter to return to menu.")
	case CmdQuit:
		c.running = false
		c.render.Message("Exiting...")
	default:
		c.render.Error(&UnknownCommandError{Line: line})
	}
}

// OnPricesUpdated renders the snapshot when in live display mode.
func (c *Console) OnPricesUpdated(prices models.PriceMap) error {
	if c.state != StateLiveDisplay {
		return nil
	}
	c.render.LivePrices(prices, c.vm.AlertSettings())
	return nil
}

func (c *Console) reply(msg string, err error) {
	if err != nil {
		c.log.Debug("command rejected", logger.Error(err))
		c.render.Error(err)
		return
	}
	if msg != "" {
		c.render.Message(msg)
	}
}

func (c *Console) stop() {
	c.running = false
	c.once.Do(func() {
		c.log.Info("console stopped")
		if c.shutdown != nil {
			c.shutdown()
		}
	})
}
