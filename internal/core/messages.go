package core

// requestKind selects the executor operation.
type requestKind int

const (
	requestInitialize requestKind = iota
	requestShutdown
	requestRestart
)

func (k requestKind) String() string {
	switch k {
	case requestInitialize:
		return "initialize"
	case requestShutdown:
		return "shutdown"
	case requestRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// request travels from the foreground to the worker.
type request struct {
	kind requestKind
	args []string
}

type resultKind int

const (
	// resultInitialize carries the engine's init return code.
	resultInitialize resultKind = iota
	// resultRunaway carries a diagnostic for an error or panic in engine code.
	resultRunaway
	// resultQuit asks the foreground loop to exit after a teardown.
	resultQuit
)

// result travels from the worker to the foreground.
type result struct {
	kind    resultKind
	code    int
	message string
}
