// Package lifecycle provides the shell's lifecycle state machine.
//
// The coordinator owns a Manager and moves it through the states below as
// initialize / shutdown requests and their results are processed on the
// foreground goroutine. Other goroutines may read the state.
//
// # State Machine
//
// Valid state transitions:
//   - Idle -> Initializing, ShuttingDown, Terminated
//   - Initializing -> Running, ShuttingDown, Terminated
//   - Running -> ShuttingDown, Terminated
//   - ShuttingDown -> Terminated
//
// Terminated is final.
//
// # Usage
//
//	manager := lifecycle.NewManager(logger, emitter)
//	if err := manager.TransitionTo(lifecycle.StateInitializing, "initialize requested"); err != nil {
//	    return err
//	}
package lifecycle
