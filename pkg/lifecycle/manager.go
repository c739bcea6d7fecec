package lifecycle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/walletshell/pkg/log"
)

// ErrInvalidTransition is returned for transitions not in the state table.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

var transitions = map[State][]State{
	StateIdle:         {StateInitializing, StateShuttingDown, StateTerminated},
	StateInitializing: {StateRunning, StateShuttingDown, StateTerminated},
	StateRunning:      {StateShuttingDown, StateTerminated},
	StateShuttingDown: {StateTerminated},
}

// DefaultManager implements Manager.
type DefaultManager struct {
	mu           sync.RWMutex
	state        State
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewManager creates a new lifecycle manager in StateIdle.
func NewManager(logger log.Logger, emitter EventEmitter) *DefaultManager {
	return &DefaultManager{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *DefaultManager) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
func (l *DefaultManager) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	if !allowed(oldState, newState) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, oldState, newState)
	}
	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

// IsStopping reports whether the state is ShuttingDown or Terminated.
func (l *DefaultManager) IsStopping() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateShuttingDown || l.state == StateTerminated
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
