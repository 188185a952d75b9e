package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"StockMon/internal/console"
	"StockMon/internal/lifecycle"
	"StockMon/internal/usecase"
	"StockMon/pkg/config"
	xhttp "StockMon/pkg/http"
	"StockMon/pkg/logger"
	"StockMon/pkg/metrics"
	"StockMon/pkg/signal"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder
	fg      *signal.Loop
	service *usecase.StockService
	proc    *usecase.StockProcessor
	vm      *usecase.StockViewModel
	http    *xhttp.Server

	in  io.Reader
	out io.Writer
}

// Option configures an App.
type Option func(*App)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
	}
}

// New creates an App. httpServer may be nil.
func New(
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
	fg *signal.Loop,
	service *usecase.StockService,
	proc *usecase.StockProcessor,
	vm *usecase.StockViewModel,
	httpServer *xhttp.Server,
	opts ...Option,
) *App {
	a := &App{
		cfg:     cfg,
		log:     log,
		metrics: rec,
		fg:      fg,
		service: service,
		proc:    proc,
		vm:      vm,
		http:    httpServer,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run wires the signal graph, performs the startup handshake and drives the
// console on the calling goroutine until quit, end of input or an interrupt.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := ossignal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	signal.SetLogger(a.log)
	if a.metrics != nil {
		signal.SetMetrics(a.metrics)
	}

	if err := usecase.Wire(a.service, a.proc, a.vm); err != nil {
		return err
	}

	bridge := lifecycle.NewBridge(a.fg, a.proc.Started, a.proc, a.log, a.service)
	con := console.New(a.fg, a.vm, a.service.Descriptions(), a.in, a.out,
		console.WithPrompt(a.cfg.Console.Prompt),
		console.WithColor(a.cfg.Console.Color),
		console.WithLogger(a.log),
		console.WithShutdown(func() {
			if err := bridge.Shutdown(); err != nil {
				a.log.Error("shutdown", logger.Error(err))
			}
		}),
	)
	if _, err := signal.Connect(a.vm.PricesUpdated, con, signal.Sync((*console.Console).OnPricesUpdated)); err != nil {
		return fmt.Errorf("wire prices_updated: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	if a.http != nil {
		g.Go(func() error { return a.http.Run(gctx) })
	}

	if err := a.start(gctx, bridge); err != nil {
		cancel()
		_ = bridge.Shutdown()
		return errors.Join(err, g.Wait())
	}

	runErr := con.Run(gctx)
	cancel()
	if errors.Is(runErr, context.Canceled) {
		a.log.Info("interrupted")
		runErr = nil
	}
	return errors.Join(runErr, g.Wait())
}

func (a *App) start(ctx context.Context, bridge *lifecycle.Bridge) error {
	a.log.Info("starting",
		logger.String("env", a.cfg.Environment),
		logger.String("feed", a.cfg.Feed.Type),
		logger.Strings("codes", a.cfg.Codes()),
	)
	if err := bridge.Start(ctx); err != nil {
		return err
	}
	if err := bridge.AwaitStart(ctx, a.cfg.Console.StartupTimeout); err != nil {
		var te *lifecycle.StartupTimeoutError
		if errors.As(err, &te) {
			a.log.Error("startup timed out", logger.Duration("timeout", te.Timeout))
		}
		return fmt.Errorf("startup: %w", err)
	}
	return nil
}
