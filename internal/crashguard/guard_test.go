package crashguard

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPresenter struct {
	mu     sync.Mutex
	titles []string
	texts  []string
}

func (p *recordingPresenter) ShowError(title, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.titles = append(p.titles, title)
	p.texts = append(p.texts, message)
}

func TestDescribeSignal(t *testing.T) {
	tests := []struct {
		sig  syscall.Signal
		want string
	}{
		{syscall.SIGSEGV, "EXCEPTION: Segmentation fault (SIGSEGV)\nwalletshell in signal handler\n"},
		{syscall.SIGFPE, "EXCEPTION: Floating point exception (SIGFPE)\nwalletshell in signal handler\n"},
		{syscall.SIGILL, "EXCEPTION: Illegal instruction (SIGILL)\nwalletshell in signal handler\n"},
		{syscall.SIGBUS, "EXCEPTION: Bus error (SIGBUS)\nwalletshell in signal handler\n"},
		{syscall.SIGABRT, "EXCEPTION: Aborted (SIGABRT)\nwalletshell in signal handler\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DescribeSignal(tt.sig))
	}
	assert.Contains(t, DescribeSignal(syscall.SIGTERM), "EXCEPTION: signal")
}

func TestGuard_SignalPresentsAndExits(t *testing.T) {
	p := &recordingPresenter{}
	var codes []int
	g := newGuard(p, nil, Options{Exit: func(code int) { codes = append(codes, code) }})

	g.handleSignal(syscall.SIGSEGV)
	g.handleSignal(syscall.SIGFPE)

	assert.Equal(t, []int{1}, codes, "only the first fault is handled")
	require.Len(t, p.texts, 1)
	assert.Contains(t, p.texts[0], "Segmentation fault (SIGSEGV)")
	assert.Equal(t, DefaultTitle, p.titles[0])
}

func TestGuard_PanicIncludesStack(t *testing.T) {
	p := &recordingPresenter{}
	var code int
	g := newGuard(p, nil, Options{Title: "crash", Exit: func(c int) { code = c }})

	g.handlePanic("nil map write", []byte("goroutine 1 [running]:\nmain.main()"))

	assert.Equal(t, 1, code)
	require.Len(t, p.texts, 1)
	assert.Contains(t, p.texts[0], "EXCEPTION: string\nnil map write\nwalletshell in main\n")
	assert.Contains(t, p.texts[0], "goroutine 1 [running]")
	assert.Equal(t, "crash", p.titles[0])
}

func TestInstallAndRecover(t *testing.T) {
	crashLog := filepath.Join(t.TempDir(), "crash.log")
	p := &recordingPresenter{}
	var codes []int
	var mu sync.Mutex

	err := Install(p, nil, Options{
		CrashLog: crashLog,
		Exit: func(code int) {
			mu.Lock()
			defer mu.Unlock()
			codes = append(codes, code)
		},
	})
	require.NoError(t, err)
	assert.FileExists(t, crashLog)

	// Later installs are ignored.
	require.NoError(t, Install(nil, nil, Options{CrashLog: filepath.Join(t.TempDir(), "other.log")}))

	func() {
		defer Recover()
		panic("wallet index out of range")
	}()

	mu.Lock()
	assert.Equal(t, []int{1}, codes)
	mu.Unlock()
	require.Len(t, p.texts, 1)
	assert.Contains(t, p.texts[0], "wallet index out of range")

	_, err = os.Stat(crashLog)
	assert.NoError(t, err)
}

func TestRecover_NoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recover()
	})
}
