package cliconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				DataDir:         "/test/data",
				EngineBinary:    "/usr/bin/nboxd",
				EngineArgs:      []string{"--dbcache=450"},
				RPCAddr:         "127.0.0.1:9999",
				Testnet:         &trueVal,
				ReadyTimeout:    "2m",
				ShutdownTimeout: "10s",
				StartMinimized:  &trueVal,
				Splash:          &falseVal,
				DisableWallet:   &trueVal,
				Language:        "de_DE",
				ShutdownPoll:    "50ms",
				BarrierPoll:     "20ms",
				LogLevel:        "debug",
				LogFile:         "/var/log/walletshell.log",
				CrashLog:        "/var/log/walletshell-crash.log",
				WatchConfig:     &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{Splash: true},
			expected: Config{
				DataDir:         "/test/data",
				EngineBinary:    "/usr/bin/nboxd",
				EngineArgs:      []string{"--dbcache=450"},
				RPCAddr:         "127.0.0.1:9999",
				Testnet:         true,
				ReadyTimeout:    2 * time.Minute,
				ShutdownTimeout: 10 * time.Second,
				StartMinimized:  true,
				Splash:          false,
				DisableWallet:   true,
				Language:        "de_DE",
				ShutdownPoll:    50 * time.Millisecond,
				BarrierPoll:     20 * time.Millisecond,
				LogLevel:        "debug",
				LogFile:         "/var/log/walletshell.log",
				CrashLog:        "/var/log/walletshell-crash.log",
				WatchConfig:     true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				DataDir:      "/config/data",
				EngineBinary: "config-engine",
				EngineArgs:   []string{"--from-file"},
				Splash:       &falseVal,
			},
			changed: map[string]bool{"datadir": true, "engine-arg": true, "splash": true},
			initial: Config{
				DataDir:    "/flag/data",
				EngineArgs: []string{"--from-flag"},
				Splash:     true,
			},
			expected: Config{
				DataDir:      "/flag/data", // unchanged because flag was set
				EngineBinary: "config-engine",
				EngineArgs:   []string{"--from-flag"},
				Splash:       true,
			},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{ReadyTimeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
datadir = "/srv/walletshell"
engine = "nboxd"
engine_args = ["--dbcache=450", "--maxconnections=16"]
ready_timeout = "90s"
hide = true
watch_config = true
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.DataDir != "/srv/walletshell" {
		t.Errorf("DataDir = %v, want /srv/walletshell", fc.DataDir)
	}
	if fc.EngineBinary != "nboxd" {
		t.Errorf("EngineBinary = %v, want nboxd", fc.EngineBinary)
	}
	if !reflect.DeepEqual(fc.EngineArgs, []string{"--dbcache=450", "--maxconnections=16"}) {
		t.Errorf("EngineArgs = %v", fc.EngineArgs)
	}
	if fc.ReadyTimeout != "90s" {
		t.Errorf("ReadyTimeout = %v, want 90s", fc.ReadyTimeout)
	}
	if fc.StartHidden == nil || !*fc.StartHidden {
		t.Errorf("StartHidden = %v, want true", fc.StartHidden)
	}
	if fc.StartMinimized != nil {
		t.Errorf("StartMinimized = %v, want nil", *fc.StartMinimized)
	}
	if fc.WatchConfig == nil || !*fc.WatchConfig {
		t.Errorf("WatchConfig = %v, want true", fc.WatchConfig)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
datadir = "/test"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".walletshell") {
		t.Errorf("DefaultConfigPath() = %v, should contain .walletshell", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
