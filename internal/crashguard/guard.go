// Package crashguard turns fatal faults into a presented diagnostic and a
// failure exit. Faults are async fault signals and panics that reach the
// top of the foreground goroutine.
package crashguard

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"

	"github.com/bft-labs/walletshell/internal/core"
	"github.com/bft-labs/walletshell/internal/ports"
	"github.com/bft-labs/walletshell/pkg/log"
)

// DefaultTitle titles the crash presentation.
const DefaultTitle = "walletshell exception"

var faultNames = map[syscall.Signal]string{
	syscall.SIGSEGV: "Segmentation fault",
	syscall.SIGFPE:  "Floating point exception",
	syscall.SIGILL:  "Illegal instruction",
	syscall.SIGBUS:  "Bus error",
	syscall.SIGABRT: "Aborted",
}

// Options configures Install.
type Options struct {
	// CrashLog receives the Go runtime's fatal error output when set.
	CrashLog string

	// Title titles the presentation. Defaults to DefaultTitle.
	Title string

	// Exit replaces os.Exit.
	Exit func(code int)
}

type guard struct {
	presenter ports.ErrorPresenter
	logger    log.Logger
	title     string
	exit      func(code int)

	mu        sync.Mutex
	triggered bool
}

var (
	installOnce sync.Once
	installErr  error
	installed   *guard
	installedMu sync.Mutex
)

// Install registers the crash handlers. Only the first call has any effect;
// there is no uninstall.
func Install(presenter ports.ErrorPresenter, logger log.Logger, opts Options) error {
	installOnce.Do(func() {
		g := newGuard(presenter, logger, opts)

		setErrorMode()

		if opts.CrashLog != "" {
			f, err := os.OpenFile(opts.CrashLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				installErr = fmt.Errorf("open crash log: %w", err)
			} else if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err != nil {
				installErr = fmt.Errorf("set crash output: %w", err)
			}
			if f != nil {
				// SetCrashOutput duplicated the descriptor.
				_ = f.Close()
			}
		}

		signals := make(chan os.Signal, 1)
		notify := make([]os.Signal, 0, len(faultNames))
		for sig := range faultNames {
			notify = append(notify, sig)
		}
		signal.Notify(signals, notify...)
		go func() {
			sig := <-signals
			g.handleSignal(sig)
		}()

		installedMu.Lock()
		installed = g
		installedMu.Unlock()
		g.logger.Debug("crash guard installed", log.String("crash_log", opts.CrashLog))
	})
	return installErr
}

// Recover presents a panic reaching the caller and exits with status 1.
// It must be deferred directly: defer crashguard.Recover().
func Recover() {
	r := recover()
	if r == nil {
		return
	}

	installedMu.Lock()
	g := installed
	installedMu.Unlock()
	if g == nil {
		panic(r)
	}
	g.handlePanic(r, debug.Stack())
}

func newGuard(presenter ports.ErrorPresenter, logger log.Logger, opts Options) *guard {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	return &guard{
		presenter: presenter,
		logger:    log.With(logger, log.Component("crashguard")),
		title:     opts.Title,
		exit:      opts.Exit,
	}
}

func (g *guard) handleSignal(sig os.Signal) {
	g.trigger(DescribeSignal(sig))
}

func (g *guard) handlePanic(v any, stack []byte) {
	g.trigger(core.FormatException(v, "main") + "\n" + string(stack))
}

// trigger presents message once and exits.
func (g *guard) trigger(message string) {
	g.mu.Lock()
	if g.triggered {
		g.mu.Unlock()
		return
	}
	g.triggered = true
	g.mu.Unlock()

	g.logger.Error("fatal fault", log.String("diagnostic", message))
	if g.presenter != nil {
		g.presenter.ShowError(g.title, message)
	}
	g.exit(1)
}

// DescribeSignal renders a fault signal as "Segmentation fault (SIGSEGV)".
func DescribeSignal(sig os.Signal) string {
	name := signalName(sig)
	if s, ok := sig.(syscall.Signal); ok {
		if desc, ok := faultNames[s]; ok {
			return fmt.Sprintf("EXCEPTION: %s (%s)\nwalletshell in signal handler\n", desc, name)
		}
	}
	return fmt.Sprintf("EXCEPTION: signal %s\nwalletshell in signal handler\n", name)
}

func signalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGSEGV:
		return "SIGSEGV"
	case syscall.SIGFPE:
		return "SIGFPE"
	case syscall.SIGILL:
		return "SIGILL"
	case syscall.SIGBUS:
		return "SIGBUS"
	case syscall.SIGABRT:
		return "SIGABRT"
	default:
		return sig.String()
	}
}
