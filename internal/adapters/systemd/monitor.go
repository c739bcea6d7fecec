// Package systemd reports shell lifecycle changes to the service manager
// through the sd_notify protocol.
package systemd

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/bft-labs/walletshell/pkg/lifecycle"
	"github.com/bft-labs/walletshell/pkg/log"
)

// nologinPath is created by systemd once the system started shutting down.
const nologinPath = "/run/nologin"

// Monitor implements ports.ShutdownMonitor. Outside systemd every
// notification is a no-op.
type Monitor struct {
	logger log.Logger
	notify func(state string) (bool, error)

	// NologinPath overrides the shutdown marker checked by
	// SystemShuttingDown.
	NologinPath string

	systemShutdown atomic.Bool

	watchdogOnce sync.Once
	stopWatchdog chan struct{}
	stopOnce     sync.Once
}

// New creates a Monitor using the NOTIFY_SOCKET of the environment.
func New(logger log.Logger) *Monitor {
	return newMonitor(logger, func(state string) (bool, error) {
		return daemon.SdNotify(false, state)
	})
}

func newMonitor(logger log.Logger, notify func(string) (bool, error)) *Monitor {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Monitor{
		logger:       log.With(logger, log.Component("systemd")),
		notify:       notify,
		NologinPath:  nologinPath,
		stopWatchdog: make(chan struct{}),
	}
}

// Ready reports a completed startup and starts the watchdog keepalive when
// the unit has WatchdogSec set.
func (m *Monitor) Ready() {
	m.send(daemon.SdNotifyReady + "\nSTATUS=running")
	m.watchdogOnce.Do(m.startWatchdog)
}

// Stopping reports that shutdown began.
func (m *Monitor) Stopping() {
	m.stopOnce.Do(func() { close(m.stopWatchdog) })
	m.send(daemon.SdNotifyStopping + "\nSTATUS=shutting down")
}

// ShutdownCompleted reports the engine was torn down.
func (m *Monitor) ShutdownCompleted() {
	m.send("STATUS=engine stopped")
}

// OnStateChange publishes the coordinator state as the unit status. It
// implements lifecycle.EventEmitter.
func (m *Monitor) OnStateChange(previous, current lifecycle.State, reason string) {
	m.logger.Debug("state changed",
		log.String("from", previous.String()),
		log.String("to", current.String()),
		log.String("reason", reason))
	m.send("STATUS=" + current.String() + ": " + reason)
}

// MarkSystemShutdown records that the shutdown came from the system.
func (m *Monitor) MarkSystemShutdown() {
	m.systemShutdown.Store(true)
}

// SystemShuttingDown reports whether the whole system is going down.
func (m *Monitor) SystemShuttingDown() bool {
	if m.systemShutdown.Load() {
		return true
	}
	if m.NologinPath == "" {
		return false
	}
	_, err := os.Stat(m.NologinPath)
	return err == nil
}

func (m *Monitor) send(state string) {
	sent, err := m.notify(state)
	switch {
	case err != nil:
		m.logger.Warn("sd_notify failed", log.String("state", state), log.Err(err))
	case sent:
		m.logger.Debug("sd_notify sent", log.String("state", state))
	}
}

func (m *Monitor) startWatchdog() {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	m.runWatchdog(interval / 2)
}

func (m *Monitor) runWatchdog(every time.Duration) {
	m.logger.Info("watchdog enabled", log.Duration("interval", every))
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopWatchdog:
				return
			case <-ticker.C:
				m.send(daemon.SdNotifyWatchdog)
			}
		}
	}()
}
