package lifecycle

// State represents the lifecycle state of the shell as seen by the foreground.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateRunning
	StateShuttingDown
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInitializing:
		return "Initializing"
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Manager manages the lifecycle state machine.
type Manager interface {
	// State returns the current lifecycle state.
	State() State

	// TransitionTo attempts to transition to a new state.
	// Returns an error wrapping ErrInvalidTransition if the move is not allowed.
	TransitionTo(newState State, reason string) error

	// IsStopping reports whether a shutdown has begun or finished.
	IsStopping() bool
}
