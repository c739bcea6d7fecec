package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultEngineBinary = "nboxd"
	DefaultRPCAddr      = "127.0.0.1:28332"
	DefaultLogFileName  = "debug.log"
	DefaultCrashLogName = "crash.log"
	DefaultSocketName   = "walletshell.sock"
)

var (
	// ErrDataDirMissing is returned when no data directory is configured.
	ErrDataDirMissing = errors.New("datadir is required")

	// ErrDataDirNotFound is returned when the data directory does not exist.
	ErrDataDirNotFound = errors.New("specified data directory does not exist")
)

// Config holds CLI configuration for walletshell.
type Config struct {
	DataDir string

	EngineBinary string
	EngineArgs   []string
	RPCAddr      string
	Testnet      bool
	Regtest      bool

	ReadyTimeout    time.Duration
	ShutdownTimeout time.Duration

	StartMinimized bool
	StartHidden    bool
	Splash         bool
	DisableWallet  bool
	ResetSettings  bool
	Language       string

	// Repair options forwarded to the engine.
	Resync        bool
	Rescan        bool
	Reindex       bool
	ZapWalletTxes int
	UpgradeWallet bool
	SalvageWallet bool

	ShutdownPoll time.Duration
	BarrierPoll  time.Duration

	LogLevel    string
	LogFile     string
	CrashLog    string
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		EngineBinary:    DefaultEngineBinary,
		RPCAddr:         DefaultRPCAddr,
		ReadyTimeout:    5 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		Splash:          true,
		ShutdownPoll:    200 * time.Millisecond,
		BarrierPoll:     100 * time.Millisecond,
		LogLevel:        "info",
		LogFile:         "", // Derived from DataDir during Validate
		CrashLog:        "", // Derived from DataDir during Validate
	}
}

// DefaultDataDir returns ~/.walletshell if the home directory is accessible.
func DefaultDataDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".walletshell")
	}
	return ""
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirMissing
	}
	if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %q", ErrDataDirNotFound, c.DataDir)
	}

	if c.EngineBinary == "" {
		return fmt.Errorf("engine binary is required")
	}
	if c.Testnet && c.Regtest {
		return fmt.Errorf("invalid combination of --regtest and --testnet")
	}
	if c.StartMinimized && c.StartHidden {
		return fmt.Errorf("--min and --hide cannot be combined")
	}
	if c.ZapWalletTxes < 0 || c.ZapWalletTxes > 2 {
		return fmt.Errorf("zapwallettxes must be 0, 1 or 2")
	}

	if c.ReadyTimeout <= 0 {
		return fmt.Errorf("ready timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.ShutdownPoll <= 0 {
		return fmt.Errorf("shutdown poll interval must be positive")
	}
	if c.BarrierPoll <= 0 {
		return fmt.Errorf("barrier poll interval must be positive")
	}

	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, DefaultLogFileName)
	}
	if c.CrashLog == "" {
		c.CrashLog = filepath.Join(c.DataDir, DefaultCrashLogName)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)

	return nil
}

// Network returns the network selected by --testnet or --regtest.
func (c *Config) Network() string {
	switch {
	case c.Testnet:
		return "test"
	case c.Regtest:
		return "regtest"
	default:
		return "main"
	}
}

// SocketPath is where a running instance accepts forwarded command lines.
func (c *Config) SocketPath() string {
	return filepath.Join(c.DataDir, DefaultSocketName)
}

// EngineCommandLine returns the engine arguments including network and
// repair options.
func (c *Config) EngineCommandLine() []string {
	args := append([]string(nil), c.EngineArgs...)
	if c.Testnet {
		args = append(args, "--testnet")
	}
	if c.Regtest {
		args = append(args, "--regtest")
	}
	if c.DisableWallet {
		args = append(args, "--disablewallet")
	}
	if c.Resync {
		args = append(args, "--resync")
	}
	if c.Rescan {
		args = append(args, "--rescan")
	}
	if c.Reindex {
		args = append(args, "--reindex")
	}
	if c.ZapWalletTxes > 0 {
		args = append(args, fmt.Sprintf("--zapwallettxes=%d", c.ZapWalletTxes))
	}
	if c.UpgradeWallet {
		args = append(args, "--upgradewallet")
	}
	if c.SalvageWallet {
		args = append(args, "--salvagewallet")
	}
	return args
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a string slice if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
