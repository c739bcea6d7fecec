// Package spawn starts detached copies of the running executable.
package spawn

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/bft-labs/walletshell/pkg/log"
)

// Spawner re-executes the current binary in its own process group so it
// outlives this process. It implements ports.Spawner.
type Spawner struct {
	logger log.Logger

	// Executable resolves the binary to start. Defaults to the running
	// executable with symlinks resolved.
	Executable func() (string, error)

	// Env is the environment for the new process. Nil inherits ours.
	Env []string
}

// New creates a Spawner.
func New(logger log.Logger) *Spawner {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Spawner{
		logger:     log.With(logger, log.Component("spawn")),
		Executable: selfupdate.ExecutablePath,
	}
}

// SpawnDetached starts the executable with args and returns without waiting
// for it.
func (s *Spawner) SpawnDetached(args []string) error {
	exe, err := s.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	cmd := exec.Command(exe, args...)
	cmd.Env = s.Env
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", exe, err)
	}
	s.logger.Info("spawned detached process", log.String("path", exe), log.Strings("args", args), log.Int("pid", cmd.Process.Pid))

	// The child is not ours to wait for.
	if err := cmd.Process.Release(); err != nil && err != os.ErrProcessDone {
		s.logger.Warn("release spawned process", log.Err(err))
	}
	return nil
}
