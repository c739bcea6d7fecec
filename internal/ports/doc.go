// Package ports defines the interfaces that connect the lifecycle core to
// the engine and to the user-facing shell.
//
// # Port Interfaces
//
//   - [Engine]: blocking node/wallet entry points driven by the executor
//   - [Window]: the main window reacting to lifecycle outcomes
//   - [Splash], [ShutdownStatus]: transient status presentation
//   - [ErrorPresenter]: blocking fatal error presentation
//   - [ShutdownMonitor]: external shutdown-completion monitor
//   - [Spawner]: detached re-exec of the shell
//   - [PaymentServer]: payment request and URI routing
//
// The core (internal/core) depends only on these interfaces. Adapters in
// internal/adapters implement them for a headless console shell and a child
// process engine.
package ports
