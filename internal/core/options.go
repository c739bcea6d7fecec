package core

import (
	"os"

	"github.com/bft-labs/walletshell/internal/ports"
	"github.com/bft-labs/walletshell/pkg/lifecycle"
	"github.com/bft-labs/walletshell/pkg/log"
)

// Option configures optional behavior of the Coordinator.
type Option func(*options)

type options struct {
	logger         log.Logger
	emitter        lifecycle.EventEmitter
	splash         ports.Splash
	shutdownStatus ports.ShutdownStatus
	monitor        ports.ShutdownMonitor
	payment        ports.PaymentServer
	cleanups       []func() error
	exit           func(code int)
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		exit:   os.Exit,
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventEmitter receives lifecycle state changes.
func WithEventEmitter(emitter lifecycle.EventEmitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithSplash sets the splash finished after a successful start.
func WithSplash(s ports.Splash) Option {
	return func(o *options) {
		o.splash = s
	}
}

// WithShutdownStatus sets what is shown while the engine shuts down.
func WithShutdownStatus(s ports.ShutdownStatus) Option {
	return func(o *options) {
		o.shutdownStatus = s
	}
}

// WithShutdownMonitor registers an external shutdown-completion monitor.
func WithShutdownMonitor(m ports.ShutdownMonitor) Option {
	return func(o *options) {
		o.monitor = m
	}
}

// WithPaymentServer enables payment request routing after startup.
func WithPaymentServer(p ports.PaymentServer) Option {
	return func(o *options) {
		o.payment = p
	}
}

// WithCleanup adds a function run after engine teardown and before a
// restart spawns the new process.
func WithCleanup(fn func() error) Option {
	return func(o *options) {
		o.cleanups = append(o.cleanups, fn)
	}
}

// WithExitFunc replaces os.Exit on the runaway exception path.
func WithExitFunc(exit func(code int)) Option {
	return func(o *options) {
		o.exit = exit
	}
}
