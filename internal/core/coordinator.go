package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/walletshell/internal/domain"
	"github.com/bft-labs/walletshell/internal/ports"
	"github.com/bft-labs/walletshell/pkg/lifecycle"
	"github.com/bft-labs/walletshell/pkg/log"
)

// Exit codes returned by Run.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

const (
	// DefaultShutdownPoll is how often the engine's shutdown flag is polled.
	DefaultShutdownPoll = 200 * time.Millisecond

	// DefaultBarrierPoll is the sleep between shutdown barrier checks.
	DefaultBarrierPoll = 100 * time.Millisecond

	// DefaultErrorTitle titles the fatal error presentation.
	DefaultErrorTitle = "walletshell exception"
)

// Config holds the Coordinator's required collaborators and startup flags.
type Config struct {
	Engine    ports.Engine
	Window    ports.Window
	Presenter ports.ErrorPresenter
	Spawner   ports.Spawner
	Options   *domain.Options

	// Args are the process arguments, program name first. Restarts derive
	// their argument list from them.
	Args []string

	StartMinimized bool
	StartHidden    bool

	ShutdownPoll time.Duration
	BarrierPoll  time.Duration
	ErrorTitle   string
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.ShutdownPoll <= 0 {
		c.ShutdownPoll = DefaultShutdownPoll
	}
	if c.BarrierPoll <= 0 {
		c.BarrierPoll = DefaultBarrierPoll
	}
	if c.ErrorTitle == "" {
		c.ErrorTitle = DefaultErrorTitle
	}
	if c.Options == nil {
		c.Options = &domain.Options{}
	}
}

// Validate checks required collaborators.
func (c *Config) Validate() error {
	switch {
	case c.Engine == nil:
		return fmt.Errorf("coordinator: engine is required")
	case c.Window == nil:
		return fmt.Errorf("coordinator: window is required")
	case c.Presenter == nil:
		return fmt.Errorf("coordinator: error presenter is required")
	case c.Spawner == nil:
		return fmt.Errorf("coordinator: spawner is required")
	}
	return nil
}

// Coordinator owns the background worker and arbitrates every lifecycle
// transition visible to the foreground.
//
// Run, RequestInitialize, RequestShutdown and the result handlers belong to
// the foreground goroutine. Other goroutines hand work to it with Post.
type Coordinator struct {
	cfg    Config
	opts   options
	logger log.Logger
	state  *lifecycle.DefaultManager

	requests *mailbox[request]
	results  *mailbox[result]
	posted   *mailbox[func()]

	workerMu sync.Mutex
	worker   *Worker

	shutdownAllowed atomic.Bool
	returnValue     atomic.Int32

	// Foreground-owned.
	pollShutdown    *time.Ticker
	shutdownStarted bool
	clientModel     *domain.ClientModel
	walletModel     *domain.WalletModel
	routeURI        func(uri string)
}

// New creates a Coordinator in lifecycle.StateIdle. The worker is not
// started until the first request.
func New(cfg Config, opts ...Option) (*Coordinator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Coordinator{
		cfg:          cfg,
		opts:         o,
		logger:       o.logger,
		state:        lifecycle.NewManager(o.logger, o.emitter),
		requests:     newMailbox[request](),
		results:      newMailbox[result](),
		posted:       newMailbox[func()](),
		pollShutdown: time.NewTicker(cfg.ShutdownPoll),
	}
	c.shutdownAllowed.Store(true)
	return c, nil
}

// State returns the current lifecycle state. Safe from any goroutine.
func (c *Coordinator) State() lifecycle.State {
	return c.state.State()
}

// ReturnValue returns the process exit code decided so far.
func (c *Coordinator) ReturnValue() int {
	return int(c.returnValue.Load())
}

// ShutdownAllowed reports whether the shutdown barrier is open.
func (c *Coordinator) ShutdownAllowed() bool {
	return c.shutdownAllowed.Load()
}

// Post runs fn on the foreground goroutine. Safe from any goroutine.
func (c *Coordinator) Post(fn func()) {
	c.posted.Send(fn)
}

func (c *Coordinator) startWorker() {
	c.workerMu.Lock()
	defer c.workerMu.Unlock()

	if c.worker != nil {
		return
	}
	exec := newExecutor(ExecutorConfig{
		Engine:   c.cfg.Engine,
		Spawner:  c.cfg.Spawner,
		Monitor:  c.opts.monitor,
		Cleanups: c.opts.cleanups,
		Args:     c.cfg.Args,
	}, c.results, c.logger)
	c.worker = startWorker(c.requests, exec.handle)
	c.logger.Debug("worker started")
}

// RequestInitialize starts the worker if needed and asks the executor to
// initialize the engine. It is meant to be called once per process.
func (c *Coordinator) RequestInitialize() {
	c.logger.Info("requesting initialize")
	c.startWorker()
	if err := c.state.TransitionTo(lifecycle.StateInitializing, "initialize requested"); err != nil {
		c.logger.Warn("initialize request ignored", log.Err(err))
		return
	}
	c.requests.Send(request{kind: requestInitialize})
}

// RequestShutdown waits for the shutdown barrier, tears down everything the
// foreground holds and asks the executor to shut the engine down. It does
// not wait for the engine; Run returns when the executor reports the
// teardown finished.
//
// It must not be called from inside the initialize-result pass.
func (c *Coordinator) RequestShutdown() {
	c.logger.Info("requesting shutdown")

	for !c.shutdownAllowed.Load() {
		time.Sleep(c.cfg.BarrierPoll)
	}

	if c.shutdownStarted {
		c.logger.Info("shutdown already requested, ignoring")
		return
	}
	c.shutdownStarted = true

	c.startWorker()

	c.cfg.Window.Hide()
	c.cfg.Window.SetClientModel(nil)
	c.pollShutdown.Stop()

	c.cfg.Window.RemoveAllWallets()
	c.walletModel = nil
	c.clientModel = nil
	c.routeURI = nil
	if p := c.opts.payment; p != nil {
		p.Detach()
	}

	if m := c.opts.monitor; m != nil {
		m.Stopping()
	}
	if m := c.opts.monitor; m != nil && m.SystemShuttingDown() {
		c.logger.Info("system shutdown")
	} else if c.opts.shutdownStatus != nil {
		c.opts.shutdownStatus.ShowShutdown()
	}

	if err := c.state.TransitionTo(lifecycle.StateShuttingDown, "shutdown requested"); err != nil {
		c.logger.Warn("unexpected state on shutdown", log.Err(err))
	}
	c.requests.Send(request{kind: requestShutdown})
}

// RequestRestart asks the executor to restart the shell with args. Only the
// first restart of a process has any effect.
func (c *Coordinator) RequestRestart(args []string) {
	c.logger.Info("requesting restart", log.Strings("args", args))
	c.startWorker()
	c.requests.Send(request{kind: requestRestart, args: append([]string(nil), args...)})
}

// RequestRepair restarts the shell with one repair option, replacing any
// repair option on the current command line.
func (c *Coordinator) RequestRepair(option string) error {
	if !IsRepairOption(option) {
		return fmt.Errorf("unknown repair option %q", option)
	}
	c.RequestRestart(RestartArgs(c.cfg.Args, option))
	return nil
}

// HandleURI forwards a URI received by the window to the payment server.
// URIs arriving before startup completed are dropped.
func (c *Coordinator) HandleURI(uri string) {
	if c.routeURI == nil {
		c.logger.Warn("payment uri received before startup, dropping", log.String("uri", uri))
		return
	}
	c.routeURI(uri)
}

// Run is the foreground loop. It returns the process exit code once the
// executor finished tearing the engine down. Cancelling ctx requests a
// shutdown.
func (c *Coordinator) Run(ctx context.Context) int {
	done := ctx.Done()
	for {
		select {
		case <-done:
			done = nil
			c.logger.Info("shutdown signal received")
			c.cfg.Engine.StartShutdown()
			c.RequestShutdown()

		case <-c.pollShutdown.C:
			switch {
			case c.cfg.Engine.RestartRequested():
				// The engine exits on its own when it asks for a restart, so
				// its shutdown flag is set too; restarting takes precedence.
				c.pollShutdown.Stop()
				c.logger.Info("engine requested restart")
				c.RequestRestart(RestartArgs(c.cfg.Args, ""))
			case c.cfg.Engine.ShutdownRequested():
				c.RequestShutdown()
			}

		case <-c.posted.Ready():
			for {
				fn, ok := c.posted.Next()
				if !ok {
					break
				}
				fn()
			}

		case <-c.results.Ready():
			if c.drainResults() {
				return c.ReturnValue()
			}
		}
	}
}

// drainResults handles queued results and reports whether the loop should
// exit.
func (c *Coordinator) drainResults() bool {
	for {
		res, ok := c.results.Next()
		if !ok {
			return false
		}
		switch res.kind {
		case resultInitialize:
			c.initializeResult(res.code)
		case resultRunaway:
			c.HandleRunawayException(res.message)
			return true
		case resultQuit:
			if err := c.state.TransitionTo(lifecycle.StateTerminated, "engine stopped"); err != nil {
				c.logger.Warn("unexpected state on quit", log.Err(err))
			}
			return true
		}
	}
}

// initializeResult completes startup after the engine initialized. The
// shutdown barrier is closed for the whole pass and reopened on every exit.
func (c *Coordinator) initializeResult(retval int) {
	c.shutdownAllowed.Store(false)
	defer c.shutdownAllowed.Store(true)

	if c.cfg.Engine.ShutdownRequested() {
		c.logger.Info("shutdown requested during initialize, skipping startup")
		return
	}

	c.logger.Info("initialization result", log.Int("retval", retval))
	if retval != 0 {
		c.returnValue.Store(ExitSuccess)
	} else {
		c.returnValue.Store(ExitFailure)
	}

	if retval == 0 {
		c.cfg.Engine.StartShutdown()
		return
	}

	payment := c.opts.payment
	if payment != nil {
		if err := payment.LoadRootCAs(); err != nil {
			c.logger.Warn("failed to load payment root certificates", log.Err(err))
		}
		payment.SetOptions(c.cfg.Options)
	}

	c.clientModel = &domain.ClientModel{
		Network:   c.cfg.Engine.Network(),
		RPCAddr:   c.cfg.Engine.RPCAddr(),
		StartedAt: time.Now(),
		Options:   c.cfg.Options,
	}
	c.cfg.Window.SetClientModel(c.clientModel)

	if w := c.cfg.Engine.Wallet(); w != nil {
		c.walletModel = &domain.WalletModel{Wallet: *w, Options: c.cfg.Options}
		if payment != nil {
			c.walletModel.CoinsSent = payment.FetchPaymentACK
		}
		c.cfg.Window.AddWallet(domain.DefaultWallet, c.walletModel)
		c.cfg.Window.SetCurrentWallet(domain.DefaultWallet)
	}

	c.cfg.Window.ApplicationInitialized()

	switch {
	case c.cfg.StartMinimized:
		c.cfg.Window.ShowMinimized()
	case !c.cfg.StartHidden:
		c.cfg.Window.Show()
	}
	if c.opts.splash != nil {
		c.opts.splash.Finish()
	}

	if payment != nil {
		c.routeURI = payment.Route(c.cfg.Window)
		c.Post(payment.UIReady)
	}
	if c.opts.monitor != nil {
		c.opts.monitor.Ready()
	}

	if err := c.state.TransitionTo(lifecycle.StateRunning, "initialize succeeded"); err != nil {
		c.logger.Warn("unexpected state after initialize", log.Err(err))
	}
}

// HandleRunawayException shows message through the blocking error presenter
// and exits with a failure status. No engine shutdown is attempted.
func (c *Coordinator) HandleRunawayException(message string) {
	c.logger.Error("fatal error, exiting", log.String("message", message))
	c.returnValue.Store(ExitFailure)
	_ = c.state.TransitionTo(lifecycle.StateTerminated, "runaway exception")
	c.cfg.Presenter.ShowError(c.cfg.ErrorTitle, message)
	c.opts.exit(ExitFailure)
}

// Close stops the worker from accepting requests and waits for it to exit.
func (c *Coordinator) Close() {
	c.pollShutdown.Stop()

	c.workerMu.Lock()
	w := c.worker
	c.workerMu.Unlock()
	if w == nil {
		return
	}

	c.logger.Debug("stopping worker")
	w.Stop()
	c.logger.Debug("stopped worker")
}
