// Package payment routes payment URIs and payment request files to the
// window and forwards command lines between shell instances.
package payment

import (
	"bufio"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/bft-labs/walletshell/internal/domain"
	"github.com/bft-labs/walletshell/internal/ports"
	"github.com/bft-labs/walletshell/pkg/log"
)

// Server implements ports.PaymentServer. Requests arriving before UIReady
// are queued and delivered in order afterwards.
type Server struct {
	logger log.Logger

	mu      sync.Mutex
	window  ports.Window
	ready    bool
	detached bool
	queue    []string
	options *domain.Options
	roots   *x509.CertPool
	acked   []domain.PaymentRequest

	listener net.Listener
	dispatch func(fn func())
	wg       sync.WaitGroup
}

// ErrSocketInUse is returned by Listen when another instance answers on the
// socket.
var ErrSocketInUse = errors.New("payment socket in use by a running instance")

// NewServer creates a Server.
func NewServer(logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Server{logger: log.With(logger, log.Component("payment"))}
}

// ParseCommandLine queues payment URIs and payment request files found in
// args.
func (s *Server) ParseCommandLine(args []string) {
	for _, arg := range args {
		if IsPaymentURI(arg) || isRequestFile(arg) {
			s.enqueue(arg)
		}
	}
}

// PendingCommandLine returns the queued, not yet delivered entries.
func (s *Server) PendingCommandLine() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queue...)
}

// LoadRootCAs loads the system certificate pool used to verify signed
// payment requests.
func (s *Server) LoadRootCAs() error {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return fmt.Errorf("load system root CAs: %w", err)
	}
	s.mu.Lock()
	s.roots = pool
	s.mu.Unlock()
	s.logger.Debug("loaded payment root CAs")
	return nil
}

// RootCAs returns the loaded pool, nil before LoadRootCAs.
func (s *Server) RootCAs() *x509.CertPool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roots
}

func (s *Server) SetOptions(opts *domain.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = opts
}

// Route binds the window and returns the handler for URIs the window
// receives.
func (s *Server) Route(w ports.Window) func(uri string) {
	s.mu.Lock()
	s.window = w
	s.mu.Unlock()
	return s.HandleURIOrFile
}

// Detach unbinds the window. Requests arriving afterwards are dropped.
func (s *Server) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = nil
	s.ready = false
	s.detached = true
	s.queue = nil
}

// HandleURIOrFile delivers a payment URI, a payment request file or the
// show command to the window, or queues it until UIReady.
func (s *Server) HandleURIOrFile(arg string) {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		s.logger.Info("window detached, dropping payment request", log.String("request", arg))
		return
	}
	if !s.ready || s.window == nil {
		s.queue = append(s.queue, arg)
		s.mu.Unlock()
		return
	}
	w := s.window
	s.mu.Unlock()

	s.deliver(w, arg)
}

func (s *Server) deliver(w ports.Window, arg string) {
	if strings.EqualFold(arg, ShowCommand) {
		w.ShowNormalIfMinimized()
		return
	}

	raw := arg
	if !IsPaymentURI(arg) {
		b, err := os.ReadFile(arg)
		if err != nil {
			s.logger.Warn("payment request file unreadable", log.String("path", arg), log.Err(err))
			w.Message("Payment request file handling", fmt.Sprintf("Cannot read payment request file %s", arg))
			return
		}
		raw = strings.TrimSpace(string(b))
	}

	req, err := ParseURI(raw)
	if err != nil {
		s.logger.Warn("invalid payment uri", log.String("uri", arg), log.Err(err))
		w.Message("URI handling", fmt.Sprintf("URI cannot be parsed: %v", err))
		return
	}
	if raw != arg {
		req.Source = arg
	}
	w.ShowNormalIfMinimized()
	w.HandlePaymentRequest(req)
}

// UIReady flushes queued requests to the routed window.
func (s *Server) UIReady() {
	s.mu.Lock()
	s.ready = true
	w, queued := s.window, s.queue
	s.queue = nil
	s.mu.Unlock()

	if w == nil {
		s.logger.Warn("payment server ready without a window, dropping queued requests", log.Int("count", len(queued)))
		return
	}
	for _, arg := range queued {
		s.deliver(w, arg)
	}
}

// FetchPaymentACK records that coins were sent for req.
func (s *Server) FetchPaymentACK(req domain.PaymentRequest) {
	s.mu.Lock()
	s.acked = append(s.acked, req)
	s.mu.Unlock()
	s.logger.Info("payment sent", log.String("address", req.Address), log.String("amount", req.Amount))
}

// Acknowledged returns the requests passed to FetchPaymentACK.
func (s *Server) Acknowledged() []domain.PaymentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PaymentRequest(nil), s.acked...)
}

func (s *Server) enqueue(arg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, arg)
}

func isRequestFile(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}

// Listen accepts command lines forwarded by other instances on the unix
// socket at path. Each received line is handed to dispatch, which runs it on
// the goroutine owning the window; a nil dispatch handles lines on the
// accepting goroutine. A stale socket file is replaced, a live one is not.
func (s *Server) Listen(path string, dispatch func(fn func())) error {
	if conn, err := net.Dial("unix", path); err == nil {
		_ = conn.Close()
		return fmt.Errorf("listen %s: %w", path, ErrSocketInUse)
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen %s: %w", path, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.dispatch = dispatch
	s.mu.Unlock()

	s.wg.Add(1)
	go s.accept(ln)
	s.logger.Info("payment server listening", log.String("socket", path))
	return nil
}

func (s *Server) accept(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("accept failed", log.Err(err))
			}
			return
		}
		s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	s.mu.Lock()
	dispatch := s.dispatch
	s.mu.Unlock()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if dispatch == nil {
			s.HandleURIOrFile(line)
			continue
		}
		dispatch(func() { s.HandleURIOrFile(line) })
	}
}

// Close stops listening.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	s.wg.Wait()
	return err
}

// Forward hands lines to an instance listening on path. It returns
// domain.ErrAlreadyForwarded when a running instance accepted them and nil
// when none is running.
func Forward(path string, lines []string) error {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil
	}
	defer conn.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(conn, line); err != nil {
			return fmt.Errorf("forward to running instance: %w", err)
		}
	}
	return domain.ErrAlreadyForwarded
}
