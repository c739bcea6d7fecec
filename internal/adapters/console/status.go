package console

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

const (
	splashMessage   = " Loading walletshell..."
	shutdownMessage = " walletshell is shutting down... Do not shut down the computer until this window disappears."
)

// Status shows a spinner while the engine starts and while it shuts down.
// It implements ports.Splash and ports.ShutdownStatus.
type Status struct {
	out io.Writer

	mu      sync.Mutex
	spinner *spinner.Spinner
}

// NewStatus creates a Status writing to out (stderr when nil).
func NewStatus(out io.Writer) *Status {
	if out == nil {
		out = os.Stderr
	}
	return &Status{out: out}
}

// ShowSplash starts the startup spinner.
func (s *Status) ShowSplash() {
	s.start(splashMessage)
}

// Finish stops the startup spinner.
func (s *Status) Finish() {
	s.stop()
}

// ShowShutdown replaces any running spinner with the shutdown notice.
func (s *Status) ShowShutdown() {
	s.stop()
	s.start(shutdownMessage)
}

// Close stops whatever spinner is running.
func (s *Status) Close() {
	s.stop()
}

// Active reports whether a spinner is running.
func (s *Status) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spinner != nil
}

func (s *Status) start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner != nil {
		return
	}
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(s.out))
	sp.Suffix = msg
	sp.Start()
	if !sp.Active() {
		// Not a terminal; print the message once.
		fmt.Fprintln(s.out, msg[1:])
	}
	s.spinner = sp
}

func (s *Status) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spinner == nil {
		return
	}
	s.spinner.Stop()
	s.spinner = nil
}
