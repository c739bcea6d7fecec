package ports

import "github.com/bft-labs/walletshell/internal/domain"

// Window is the main shell window.
type Window interface {
	SetClientModel(m *domain.ClientModel)
	AddWallet(name string, m *domain.WalletModel)
	SetCurrentWallet(name string)
	RemoveAllWallets()

	Show()
	ShowMinimized()
	Hide()

	// ApplicationInitialized is called once startup completed.
	ApplicationInitialized()

	// HandlePaymentRequest and ShowNormalIfMinimized are routed from the
	// payment server after startup.
	HandlePaymentRequest(req domain.PaymentRequest)
	ShowNormalIfMinimized()
	Message(title, text string)
}

// Splash is shown while the engine initializes.
type Splash interface {
	Finish()
}

// ShutdownStatus tells the user the shell is shutting down.
type ShutdownStatus interface {
	ShowShutdown()
}

// ErrorPresenter shows a fatal error and blocks until acknowledged.
type ErrorPresenter interface {
	ShowError(title, message string)
}

// ShutdownMonitor is an external monitor of shell shutdown, such as a
// service manager.
type ShutdownMonitor interface {
	// Ready reports a completed startup.
	Ready()

	// Stopping reports a shutdown has begun.
	Stopping()

	// ShutdownCompleted reports the engine was torn down.
	ShutdownCompleted()

	// SystemShuttingDown reports whether the shutdown came from the system.
	SystemShuttingDown() bool
}

// Spawner starts a detached copy of the shell with the given arguments.
type Spawner interface {
	SpawnDetached(args []string) error
}

// PaymentServer routes payment requests and URIs.
type PaymentServer interface {
	LoadRootCAs() error
	SetOptions(opts *domain.Options)

	// Route connects payment requests to the window and returns a function
	// that accepts URIs from the window.
	Route(w Window) func(uri string)

	// FetchPaymentACK is called after coins were sent for a request.
	FetchPaymentACK(req domain.PaymentRequest)

	// UIReady flushes queued requests to the routed window.
	UIReady()

	// Detach unbinds the window once shutdown started; later requests are
	// dropped.
	Detach()
}
