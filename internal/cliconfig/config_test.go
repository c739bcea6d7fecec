package cliconfig

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EngineBinary != DefaultEngineBinary {
		t.Errorf("EngineBinary = %v, want %v", cfg.EngineBinary, DefaultEngineBinary)
	}
	if cfg.RPCAddr != DefaultRPCAddr {
		t.Errorf("RPCAddr = %v, want %v", cfg.RPCAddr, DefaultRPCAddr)
	}
	if !cfg.Splash {
		t.Error("Splash = false, want true")
	}
	if cfg.ShutdownPoll != 200*time.Millisecond {
		t.Errorf("ShutdownPoll = %v, want 200ms", cfg.ShutdownPoll)
	}
	if cfg.Network() != "main" {
		t.Errorf("Network() = %v, want main", cfg.Network())
	}
}

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", mutate: func(*Config) {}},
		{name: "minimized only", mutate: func(c *Config) { c.StartMinimized = true }},
		{name: "min with hide", mutate: func(c *Config) { c.StartMinimized, c.StartHidden = true, true }, wantErr: true},
		{name: "testnet with regtest", mutate: func(c *Config) { c.Testnet, c.Regtest = true, true }, wantErr: true},
		{name: "zapwallettxes out of range", mutate: func(c *Config) { c.ZapWalletTxes = 3 }, wantErr: true},
		{name: "missing engine", mutate: func(c *Config) { c.EngineBinary = "" }, wantErr: true},
		{name: "zero ready timeout", mutate: func(c *Config) { c.ReadyTimeout = 0 }, wantErr: true},
		{name: "zero shutdown timeout", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: true},
		{name: "zero shutdown poll", mutate: func(c *Config) { c.ShutdownPoll = 0 }, wantErr: true},
		{name: "negative barrier poll", mutate: func(c *Config) { c.BarrierPoll = -time.Millisecond }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateDataDir(t *testing.T) {
	cfg := validConfig(t)
	cfg.DataDir = ""
	if err := cfg.Validate(); !errors.Is(err, ErrDataDirMissing) {
		t.Errorf("Validate() error = %v, want ErrDataDirMissing", err)
	}

	cfg = validConfig(t)
	cfg.DataDir = filepath.Join(cfg.DataDir, "missing")
	if err := cfg.Validate(); !errors.Is(err, ErrDataDirNotFound) {
		t.Errorf("Validate() error = %v, want ErrDataDirNotFound", err)
	}
}

func TestConfig_ValidateDerivesPaths(t *testing.T) {
	cfg := validConfig(t)
	cfg.LogLevel = "DEBUG"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if want := filepath.Join(cfg.DataDir, DefaultLogFileName); cfg.LogFile != want {
		t.Errorf("LogFile = %v, want %v", cfg.LogFile, want)
	}
	if want := filepath.Join(cfg.DataDir, DefaultCrashLogName); cfg.CrashLog != want {
		t.Errorf("CrashLog = %v, want %v", cfg.CrashLog, want)
	}
	if want := filepath.Join(cfg.DataDir, DefaultSocketName); cfg.SocketPath() != want {
		t.Errorf("SocketPath() = %v, want %v", cfg.SocketPath(), want)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestConfig_EngineCommandLine(t *testing.T) {
	cfg := Config{
		EngineArgs:    []string{"--dbcache=450"},
		Regtest:       true,
		DisableWallet: true,
		Resync:        true,
		ZapWalletTxes: 2,
		SalvageWallet: true,
	}

	want := []string{"--dbcache=450", "--regtest", "--disablewallet", "--resync", "--zapwallettxes=2", "--salvagewallet"}
	if got := cfg.EngineCommandLine(); !reflect.DeepEqual(got, want) {
		t.Errorf("EngineCommandLine() = %v, want %v", got, want)
	}
	if cfg.Network() != "regtest" {
		t.Errorf("Network() = %v, want regtest", cfg.Network())
	}

	// EngineArgs must not be aliased by the returned slice.
	got := cfg.EngineCommandLine()
	got[0] = "changed"
	if cfg.EngineArgs[0] != "--dbcache=450" {
		t.Error("EngineCommandLine() aliased EngineArgs")
	}
}
