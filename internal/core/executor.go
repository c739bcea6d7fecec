package core

import (
	"fmt"

	"github.com/bft-labs/walletshell/internal/ports"
	"github.com/bft-labs/walletshell/pkg/log"
)

// Executor drives the engine from the worker goroutine. Each request runs
// exactly one blocking engine operation; nothing thrown by engine code
// escapes a handler.
type Executor struct {
	engine   ports.Engine
	spawner  ports.Spawner
	monitor  ports.ShutdownMonitor
	cleanups []func() error
	args     []string
	results  *mailbox[result]
	logger   log.Logger

	// Worker-owned. alreadyRestarted starts false and is set by the first
	// restart, so restart side effects happen at most once per process.
	alreadyRestarted bool
	shutdownDone     bool
}

// ExecutorConfig holds the executor's collaborators.
type ExecutorConfig struct {
	Engine  ports.Engine
	Spawner ports.Spawner
	Monitor ports.ShutdownMonitor

	// Cleanups run after engine teardown and before the re-exec.
	Cleanups []func() error

	// Args are the current process arguments, program name first.
	Args []string
}

func newExecutor(cfg ExecutorConfig, results *mailbox[result], logger log.Logger) *Executor {
	return &Executor{
		engine:   cfg.Engine,
		spawner:  cfg.Spawner,
		monitor:  cfg.Monitor,
		cleanups: cfg.Cleanups,
		args:     append([]string(nil), cfg.Args...),
		results:  results,
		logger:   logger,
	}
}

func (e *Executor) handle(req request) {
	e.logger.Debug("executor request", log.String("request", req.kind.String()))
	switch req.kind {
	case requestInitialize:
		e.initialize()
	case requestShutdown:
		e.shutdown()
	case requestRestart:
		e.restart(req.args)
	}
}

func (e *Executor) initialize() {
	defer e.recoverRunaway("initialize")

	e.logger.Debug("running engine init in worker")
	rv, err := e.engine.Init()
	if err != nil {
		e.runaway(err, "initialize")
		return
	}

	if e.engine.ResyncNeeded() {
		if !e.engine.ShutdownRequested() {
			e.restart(RestartArgs(e.args, OptResync))
		}
		return
	}
	e.results.Send(result{kind: resultInitialize, code: rv})
}

func (e *Executor) restart(args []string) {
	if e.alreadyRestarted {
		e.logger.Info("restart already in progress, ignoring", log.Strings("args", args))
		return
	}
	e.alreadyRestarted = true
	defer e.recoverRunaway("restart")

	e.logger.Info("running restart in worker", log.Strings("args", args))
	e.engine.RequestInterrupt()
	if err := e.engine.Shutdown(); err != nil {
		e.runaway(err, "restart")
		return
	}
	e.logger.Info("engine shutdown finished")
	e.respawn(args)
}

// respawn runs the cleanups, starts the new process and ends this one.
func (e *Executor) respawn(args []string) {
	for _, cleanup := range e.cleanups {
		if err := cleanup(); err != nil {
			e.runaway(err, "restart")
			return
		}
	}

	if err := e.spawner.SpawnDetached(args); err != nil {
		e.runaway(err, "restart")
		return
	}
	e.logger.Info("restart initiated")

	e.results.Send(result{kind: resultQuit})
	if e.monitor != nil {
		e.monitor.ShutdownCompleted()
	}
}

func (e *Executor) shutdown() {
	if e.alreadyRestarted {
		e.logger.Info("restart in progress, skipping shutdown")
		return
	}
	if e.engine.RestartRequested() {
		// The engine stopped itself to be restarted: skip teardown and
		// start the new process.
		e.logger.Info("engine requested restart, skipping shutdown")
		e.alreadyRestarted = true
		defer e.recoverRunaway("restart")
		e.respawn(RestartArgs(e.args, ""))
		return
	}
	if e.shutdownDone {
		e.logger.Info("shutdown already done, ignoring")
		return
	}
	e.shutdownDone = true
	defer e.recoverRunaway("shutdown")

	e.logger.Info("running shutdown in worker")
	e.engine.RequestInterrupt()
	if err := e.engine.Shutdown(); err != nil {
		e.runaway(err, "shutdown")
		return
	}
	e.logger.Info("engine shutdown finished")

	e.results.Send(result{kind: resultQuit})
	if e.monitor != nil {
		e.monitor.ShutdownCompleted()
	}
}

// recoverRunaway must be deferred directly by a handler.
func (e *Executor) recoverRunaway(where string) {
	if r := recover(); r != nil {
		e.runaway(r, where)
	}
}

func (e *Executor) runaway(v any, where string) {
	msg := FormatException(v, where)
	e.logger.Error("runaway exception", log.String("where", where), log.String("diagnostic", msg))
	e.results.Send(result{kind: resultRunaway, message: msg})
}

// FormatException renders an error or panic value as the diagnostic text
// shown to the user.
func FormatException(v any, where string) string {
	switch x := v.(type) {
	case error:
		return fmt.Sprintf("EXCEPTION: %T\n%s\nwalletshell in %s\n", x, x.Error(), where)
	case string:
		return fmt.Sprintf("EXCEPTION: string\n%s\nwalletshell in %s\n", x, where)
	default:
		return fmt.Sprintf("UNKNOWN EXCEPTION\n%v\nwalletshell in %s\n", x, where)
	}
}
