// Package core implements the shell's lifecycle controller.
//
// Two goroutines matter. The foreground goroutine runs Coordinator.Run and
// owns the lifecycle state, the shutdown barrier and every window and model
// reference. The background worker is started lazily, drains engine requests
// one at a time and hands them to the Executor, which owns the restart guard.
//
// The goroutines talk through two unbounded FIFO mailboxes: requests flow
// foreground to background, results flow back. Neither side blocks on send
// and only plain values cross: a request kind with a copied argument list, or
// a result kind with a return code or diagnostic text.
//
// Engine errors and panics never escape the worker. They are turned into a
// runaway message whose handler shows one blocking error and exits with
// status 1.
package core
