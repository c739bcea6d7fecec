package core

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/walletshell/internal/domain"
	"github.com/bft-labs/walletshell/internal/ports"
)

// fakeEngine is a scriptable ports.Engine.
type fakeEngine struct {
	mu sync.Mutex

	initCode  int
	initErr   error
	initPanic any
	// initBlock, when set, makes Init wait until it is closed or a shutdown
	// is requested.
	initBlock chan struct{}

	resync  bool
	wallet  *domain.WalletInfo
	shutErr error

	shutdownRequested atomic.Bool
	restartRequested  atomic.Bool
	shutdownSignal    chan struct{}
	shutdownOnce      sync.Once

	initCalls      int
	interruptCalls int
	shutdownCalls  int
}

func newFakeEngine(code int) *fakeEngine {
	return &fakeEngine{initCode: code, shutdownSignal: make(chan struct{})}
}

func (e *fakeEngine) Init() (int, error) {
	e.mu.Lock()
	e.initCalls++
	block, p, code, err := e.initBlock, e.initPanic, e.initCode, e.initErr
	e.mu.Unlock()

	if p != nil {
		panic(p)
	}
	if block != nil {
		select {
		case <-block:
		case <-e.shutdownSignal:
			return 0, nil
		}
	}
	return code, err
}

func (e *fakeEngine) RequestInterrupt() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interruptCalls++
}

func (e *fakeEngine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdownCalls++
	return e.shutErr
}

func (e *fakeEngine) ResyncNeeded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resync
}

func (e *fakeEngine) ShutdownRequested() bool { return e.shutdownRequested.Load() }
func (e *fakeEngine) RestartRequested() bool  { return e.restartRequested.Load() }

func (e *fakeEngine) StartShutdown() {
	e.shutdownRequested.Store(true)
	e.shutdownOnce.Do(func() { close(e.shutdownSignal) })
}

func (e *fakeEngine) Wallet() *domain.WalletInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wallet
}

func (e *fakeEngine) Network() string { return "main" }
func (e *fakeEngine) RPCAddr() string { return "127.0.0.1:28332" }

func (e *fakeEngine) counts() (inits, interrupts, shutdowns int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initCalls, e.interruptCalls, e.shutdownCalls
}

// fakeWindow records the calls made by the coordinator.
type fakeWindow struct {
	mu sync.Mutex

	calls   []string
	client  *domain.ClientModel
	wallets map[string]*domain.WalletModel
	current string
	visible bool
	minimal bool
	payReqs []domain.PaymentRequest

	// blockClientModel, when set, stalls a non-nil SetClientModel until
	// closed; enteredClientModel is closed when that happens.
	blockClientModel   chan struct{}
	enteredClientModel chan struct{}
	panicOnShow        bool
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{wallets: map[string]*domain.WalletModel{}}
}

func (w *fakeWindow) record(call string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, call)
}

func (w *fakeWindow) SetClientModel(m *domain.ClientModel) {
	if m != nil && w.blockClientModel != nil {
		close(w.enteredClientModel)
		<-w.blockClientModel
	}
	w.mu.Lock()
	w.client = m
	w.mu.Unlock()
	if m == nil {
		w.record("SetClientModel(nil)")
		return
	}
	w.record("SetClientModel")
}

func (w *fakeWindow) AddWallet(name string, m *domain.WalletModel) {
	w.mu.Lock()
	w.wallets[name] = m
	w.mu.Unlock()
	w.record("AddWallet")
}

func (w *fakeWindow) SetCurrentWallet(name string) {
	w.mu.Lock()
	w.current = name
	w.mu.Unlock()
	w.record("SetCurrentWallet")
}

func (w *fakeWindow) RemoveAllWallets() {
	w.mu.Lock()
	w.wallets = map[string]*domain.WalletModel{}
	w.mu.Unlock()
	w.record("RemoveAllWallets")
}

func (w *fakeWindow) Show() {
	if w.panicOnShow {
		panic("window exploded")
	}
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
	w.record("Show")
}

func (w *fakeWindow) ShowMinimized() {
	w.mu.Lock()
	w.visible, w.minimal = true, true
	w.mu.Unlock()
	w.record("ShowMinimized")
}

func (w *fakeWindow) Hide() {
	w.mu.Lock()
	w.visible = false
	w.mu.Unlock()
	w.record("Hide")
}

func (w *fakeWindow) ApplicationInitialized() { w.record("ApplicationInitialized") }
func (w *fakeWindow) ShowNormalIfMinimized()  { w.record("ShowNormalIfMinimized") }
func (w *fakeWindow) Message(title, text string) {
	w.record("Message")
}

func (w *fakeWindow) HandlePaymentRequest(req domain.PaymentRequest) {
	w.mu.Lock()
	w.payReqs = append(w.payReqs, req)
	w.mu.Unlock()
	w.record("HandlePaymentRequest")
}

func (w *fakeWindow) isVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *fakeWindow) count(call string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c == call {
			n++
		}
	}
	return n
}

// fakePresenter records fatal error presentations.
type fakePresenter struct {
	mu       sync.Mutex
	messages []string
}

func (p *fakePresenter) ShowError(title, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
}

func (p *fakePresenter) shown() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.messages...)
}

// fakeSpawner records re-exec requests.
type fakeSpawner struct {
	mu    sync.Mutex
	err   error
	spawn [][]string
}

func (s *fakeSpawner) SpawnDetached(args []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spawn = append(s.spawn, append([]string(nil), args...))
	return s.err
}

func (s *fakeSpawner) calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.spawn...)
}

// fakeMonitor records shutdown monitor notifications.
type fakeMonitor struct {
	mu             sync.Mutex
	systemShutdown bool
	ready          int
	stopping       int
	completed      int
}

func (m *fakeMonitor) Ready()             { m.mu.Lock(); m.ready++; m.mu.Unlock() }
func (m *fakeMonitor) Stopping()          { m.mu.Lock(); m.stopping++; m.mu.Unlock() }
func (m *fakeMonitor) ShutdownCompleted() { m.mu.Lock(); m.completed++; m.mu.Unlock() }
func (m *fakeMonitor) SystemShuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.systemShutdown
}

func (m *fakeMonitor) snapshot() (ready, stopping, completed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready, m.stopping, m.completed
}

// fakeStatus counts shutdown status presentations and splash finishes.
type fakeStatus struct {
	shutdowns atomic.Int32
	finished  atomic.Int32
}

func (s *fakeStatus) ShowShutdown() { s.shutdowns.Add(1) }
func (s *fakeStatus) Finish()       { s.finished.Add(1) }

// fakePayment records payment server wiring.
type fakePayment struct {
	mu       sync.Mutex
	rootCAs  int
	options  *domain.Options
	uiReady  int
	detached int
	uris     []string
	window   ports.Window
	rootErr  error
	acks     []domain.PaymentRequest
}

func (p *fakePayment) LoadRootCAs() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rootCAs++
	return p.rootErr
}

func (p *fakePayment) SetOptions(opts *domain.Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = opts
}

func (p *fakePayment) Route(w ports.Window) func(uri string) {
	p.mu.Lock()
	p.window = w
	p.mu.Unlock()
	return func(uri string) {
		p.mu.Lock()
		p.uris = append(p.uris, uri)
		p.mu.Unlock()
		w.HandlePaymentRequest(domain.PaymentRequest{Source: uri})
	}
}

func (p *fakePayment) FetchPaymentACK(req domain.PaymentRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acks = append(p.acks, req)
}

func (p *fakePayment) UIReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uiReady++
}

func (p *fakePayment) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detached++
}

func (p *fakePayment) detachCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detached
}

func (p *fakePayment) readyCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uiReady
}

var errBoom = errors.New("block index corrupted")
