// Package console implements the shell ports for a headless terminal
// session: a window that logs what a desktop window would display, spinner
// based status indicators and a blocking error box.
package console

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/bft-labs/walletshell/internal/domain"
	"github.com/bft-labs/walletshell/pkg/log"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Window is a ports.Window for terminals. It tracks the state a desktop
// window would hold and reports changes on its writer.
type Window struct {
	out    io.Writer
	logger log.Logger

	mu        sync.Mutex
	visible   bool
	minimized bool
	client    *domain.ClientModel
	wallets   map[string]*domain.WalletModel
	current   string
	requests  []domain.PaymentRequest
}

// NewWindow creates a hidden window writing to out (stdout when nil).
func NewWindow(out io.Writer, logger log.Logger) *Window {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Window{
		out:     out,
		logger:  log.With(logger, log.Component("window")),
		wallets: make(map[string]*domain.WalletModel),
	}
}

func (w *Window) SetClientModel(m *domain.ClientModel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.client = m
	if m == nil {
		w.logger.Debug("client model detached")
		return
	}
	w.logger.Info("client model attached", log.String("network", m.Network), log.String("rpc_addr", m.RPCAddr))
}

func (w *Window) AddWallet(name string, m *domain.WalletModel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wallets[name] = m
	w.logger.Info("wallet added", log.String("name", name), log.String("path", m.Wallet.Path))
}

func (w *Window) SetCurrentWallet(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.wallets[name]; !ok {
		w.logger.Warn("unknown wallet selected", log.String("name", name))
		return
	}
	w.current = name
}

func (w *Window) RemoveAllWallets() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wallets = make(map[string]*domain.WalletModel)
	w.current = ""
}

func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible, w.minimized = true, false
	w.render()
}

func (w *Window) ShowMinimized() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible, w.minimized = true, true
	w.logger.Info("window minimized")
}

func (w *Window) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visible, w.minimized = false, false
}

func (w *Window) ShowNormalIfMinimized() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.visible {
		return
	}
	if w.minimized {
		w.minimized = false
		w.render()
	}
}

func (w *Window) ApplicationInitialized() {
	w.logger.Info("application initialized")
}

func (w *Window) HandlePaymentRequest(req domain.PaymentRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.requests = append(w.requests, req)
	fmt.Fprintf(w.out, "%s %s %s\n",
		titleStyle.Render("payment request"),
		req.Address,
		mutedStyle.Render(fmt.Sprintf("amount=%s label=%q", req.Amount, req.Label)))
}

func (w *Window) Message(title, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s %s\n", titleStyle.Render(title), text)
}

// render writes the window summary. Callers hold w.mu.
func (w *Window) render() {
	network := "-"
	if w.client != nil {
		network = w.client.Network
	}
	names := make([]string, 0, len(w.wallets))
	for name := range w.wallets {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w.out, "%s %s\n",
		titleStyle.Render("walletshell"),
		mutedStyle.Render(fmt.Sprintf("network=%s wallets=%v current=%q", network, names, w.current)))
}

// Visible reports whether the window is shown, minimized or not.
func (w *Window) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// Minimized reports whether the window is shown minimized.
func (w *Window) Minimized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimized
}

// CurrentWallet returns the selected wallet name.
func (w *Window) CurrentWallet() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// PaymentRequests returns the requests routed to the window so far.
func (w *Window) PaymentRequests() []domain.PaymentRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.PaymentRequest(nil), w.requests...)
}
