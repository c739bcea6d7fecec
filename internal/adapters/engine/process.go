// Package engine runs the node daemon as a child process and exposes it
// through ports.Engine.
package engine

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/walletshell/internal/domain"
	"github.com/bft-labs/walletshell/pkg/lifecycle"
	"github.com/bft-labs/walletshell/pkg/log"
)

const (
	// ExitCodeRestart is the child exit code asking the shell to restart.
	ExitCodeRestart = 3

	// ResyncMarker is left in the data dir by a node that needs a resync.
	ResyncMarker = ".resync-required"

	// WalletFile is the default wallet file name inside the data dir.
	WalletFile = "wallet.dat"

	DefaultNetwork         = "main"
	DefaultRPCAddr         = "127.0.0.1:28332"
	DefaultReadyTimeout    = 5 * time.Minute
	DefaultShutdownTimeout = 30 * time.Second

	dialTimeout = 500 * time.Millisecond
	waitDelay   = time.Second
)

// Config describes how to launch the node daemon.
type Config struct {
	Binary  string
	Args    []string
	DataDir string
	Network string
	RPCAddr string

	ReadyTimeout    time.Duration
	ShutdownTimeout time.Duration
	DisableWallet   bool

	// Output receives the child's stdout and stderr. Defaults to discard.
	Output io.Writer
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Network == "" {
		c.Network = DefaultNetwork
	}
	if c.RPCAddr == "" {
		c.RPCAddr = DefaultRPCAddr
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = DefaultReadyTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Output == nil {
		c.Output = io.Discard
	}
}

// Validate checks the launch configuration.
func (c *Config) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("engine binary is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("engine data dir is required")
	}
	return nil
}

// Process is a ports.Engine backed by a child process.
type Process struct {
	cfg    Config
	logger log.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	exited   chan struct{}
	exitCode int

	stopping          atomic.Bool
	resync            atomic.Bool
	shutdownRequested atomic.Bool
	restartRequested  atomic.Bool

	interrupt     chan struct{}
	interruptOnce sync.Once
	shutdown      chan struct{}
	shutdownOnce  sync.Once
}

// New creates a Process. The child is not started until Init.
func New(cfg Config, logger log.Logger) (*Process, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Process{
		cfg:       cfg,
		logger:    log.With(logger, log.Component("engine")),
		interrupt: make(chan struct{}),
		shutdown:  make(chan struct{}),
	}, nil
}

// Init starts the child and waits until its RPC address accepts
// connections. It returns 1 once ready, 0 when the child exited, startup was
// interrupted or the ready timeout elapsed.
func (p *Process) Init() (int, error) {
	args := append(append([]string(nil), p.cfg.Args...), "--datadir", p.cfg.DataDir)
	cmd := exec.Command(p.cfg.Binary, args...)
	cmd.Stdout = p.cfg.Output
	cmd.Stderr = p.cfg.Output
	cmd.WaitDelay = waitDelay
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start engine: %w", err)
	}
	p.logger.Info("engine started",
		log.String("binary", p.cfg.Binary),
		log.Int("pid", cmd.Process.Pid),
		log.String("rpc_addr", p.cfg.RPCAddr))

	exited := make(chan struct{})
	p.mu.Lock()
	p.cmd = cmd
	p.exited = exited
	p.mu.Unlock()
	go p.wait(cmd, exited)

	rv := p.waitReady(exited)
	p.resync.Store(fileExists(filepath.Join(p.cfg.DataDir, ResyncMarker)))
	return rv, nil
}

func (p *Process) wait(cmd *exec.Cmd, exited chan struct{}) {
	err := cmd.Wait()
	code := cmd.ProcessState.ExitCode()

	p.mu.Lock()
	p.exitCode = code
	p.mu.Unlock()
	close(exited)

	if p.stopping.Load() {
		p.logger.Debug("engine exited", log.Int("code", code))
		return
	}

	p.logger.Warn("engine exited on its own", log.Int("code", code), log.Err(err))
	if code == ExitCodeRestart {
		p.restartRequested.Store(true)
	}
	p.StartShutdown()
}

func (p *Process) waitReady(exited <-chan struct{}) int {
	deadline := time.NewTimer(p.cfg.ReadyTimeout)
	defer deadline.Stop()

	abort := make(chan struct{})
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-exited:
		case <-p.interrupt:
		case <-p.shutdown:
		case <-deadline.C:
			p.logger.Warn("engine not ready before timeout", log.Duration("timeout", p.cfg.ReadyTimeout))
		case <-finished:
			return
		}
		close(abort)
	}()

	backoff := lifecycle.NewBackoff(50*time.Millisecond, 2*time.Second)
	for {
		conn, err := net.DialTimeout("tcp", p.cfg.RPCAddr, dialTimeout)
		if err == nil {
			_ = conn.Close()
			p.logger.Info("engine ready")
			return 1
		}
		p.logger.Debug("engine not ready",
			log.Err(err),
			log.Int("attempt", backoff.Attempts()+1),
			log.Duration("retry_in", backoff.Next()))
		if !backoff.Wait(abort) {
			return 0
		}
	}
}

// RequestInterrupt aborts a pending Init.
func (p *Process) RequestInterrupt() {
	p.interruptOnce.Do(func() { close(p.interrupt) })
}

// Shutdown asks the child to terminate, waits up to the shutdown timeout
// and kills it after that.
func (p *Process) Shutdown() error {
	p.stopping.Store(true)

	p.mu.Lock()
	cmd, exited := p.cmd, p.exited
	p.mu.Unlock()
	if cmd == nil {
		return nil
	}

	select {
	case <-exited:
		return nil
	default:
	}

	p.logger.Info("stopping engine", log.Duration("timeout", p.cfg.ShutdownTimeout))
	if err := terminate(cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("terminate engine", log.Err(err))
	}

	timer := time.NewTimer(p.cfg.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-exited:
		return nil
	case <-timer.C:
	}

	p.logger.Warn("engine did not stop in time, killing")
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill engine: %w", err)
	}
	<-exited
	return nil
}

// ExitCode returns the child's exit code, or -1 while it runs.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited == nil {
		return -1
	}
	select {
	case <-p.exited:
		return p.exitCode
	default:
		return -1
	}
}

func (p *Process) ResyncNeeded() bool      { return p.resync.Load() }
func (p *Process) ShutdownRequested() bool { return p.shutdownRequested.Load() }
func (p *Process) RestartRequested() bool  { return p.restartRequested.Load() }

// StartShutdown flags a shutdown request and aborts a pending Init.
func (p *Process) StartShutdown() {
	p.shutdownRequested.Store(true)
	p.shutdownOnce.Do(func() { close(p.shutdown) })
}

// Wallet returns the default wallet unless wallets are disabled.
func (p *Process) Wallet() *domain.WalletInfo {
	if p.cfg.DisableWallet {
		return nil
	}
	return &domain.WalletInfo{
		Name: WalletFile,
		Path: filepath.Join(p.cfg.DataDir, WalletFile),
	}
}

func (p *Process) Network() string { return p.cfg.Network }
func (p *Process) RPCAddr() string { return p.cfg.RPCAddr }

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
