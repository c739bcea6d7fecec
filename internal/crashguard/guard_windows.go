//go:build windows

package crashguard

import (
	"golang.org/x/sys/windows"

	"github.com/bft-labs/walletshell/internal/ports"
)

// setErrorMode stops Windows from showing its own fault dialogs.
func setErrorMode() {
	windows.SetErrorMode(windows.SEM_FAILCRITICALERRORS | windows.SEM_NOGPFAULTERRORBOX | windows.SEM_NOOPENFILEERRORBOX)
}

// Presenter returns a message box presenter. fallback also receives the
// message so it reaches the console.
func Presenter(fallback ports.ErrorPresenter) ports.ErrorPresenter {
	return messageBox{fallback: fallback}
}

type messageBox struct {
	fallback ports.ErrorPresenter
}

func (m messageBox) ShowError(title, message string) {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		m.fallback.ShowError(title, message)
		return
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		m.fallback.ShowError(title, message)
		return
	}
	if _, err := windows.MessageBox(0, text, caption, windows.MB_OK|windows.MB_ICONERROR); err != nil {
		m.fallback.ShowError(title, message)
	}
}
