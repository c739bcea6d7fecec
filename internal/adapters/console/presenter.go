package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var errorBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("196")).
	Padding(0, 1)

var errorTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

// Presenter renders fatal errors in a box and, on an interactive terminal,
// waits for Enter before returning. It implements ports.ErrorPresenter.
type Presenter struct {
	Out io.Writer
	In  io.Reader

	// Interactive decides whether to wait for Enter. Defaults to checking
	// whether In is a terminal.
	Interactive func() bool
}

// NewPresenter creates a Presenter on stderr and stdin.
func NewPresenter() *Presenter {
	return &Presenter{Out: os.Stderr, In: os.Stdin}
}

// ShowError writes the error box and blocks until acknowledged.
func (p *Presenter) ShowError(title, message string) {
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintln(out, RenderError(title, message))

	if !p.interactive() {
		return
	}
	fmt.Fprint(out, "Press Enter to exit.")
	_, _ = bufio.NewReader(p.In).ReadString('\n')
}

func (p *Presenter) interactive() bool {
	if p.Interactive != nil {
		return p.Interactive()
	}
	f, ok := p.In.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RenderError formats title and message as an error box.
func RenderError(title, message string) string {
	return errorBox.Render(errorTitle.Render(title) + "\n\n" + message)
}
