package ports

import "github.com/bft-labs/walletshell/internal/domain"

// Engine is the blocking node/wallet backend. Only the executor goroutine
// calls Init, Shutdown and friends; the query methods are safe from any
// goroutine.
type Engine interface {
	// Init starts the engine and blocks until it is ready or failed.
	// A non-zero return code means success.
	Init() (int, error)

	// RequestInterrupt asks in-flight engine work to stop. Non-blocking.
	RequestInterrupt()

	// Shutdown tears the engine down and blocks until done.
	Shutdown() error

	// ResyncNeeded reports whether Init found data that needs a resync.
	ResyncNeeded() bool

	// ShutdownRequested reports whether anyone asked the engine to stop.
	ShutdownRequested() bool

	// RestartRequested reports whether the engine asked for a restart.
	RestartRequested() bool

	// StartShutdown records a shutdown request without blocking.
	StartShutdown()

	// Wallet returns the loaded wallet, or nil when running without one.
	Wallet() *domain.WalletInfo

	// Network returns the network name the engine runs on.
	Network() string

	// RPCAddr returns the engine's RPC address.
	RPCAddr() string
}
