//go:build !windows

package crashguard

import "github.com/bft-labs/walletshell/internal/ports"

func setErrorMode() {}

// Presenter returns the presenter used for fatal errors on this platform.
func Presenter(fallback ports.ErrorPresenter) ports.ErrorPresenter {
	return fallback
}
