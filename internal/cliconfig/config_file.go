package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Repair options are one-shot and only accepted on the command line.
type FileConfig struct {
	DataDir         string   `toml:"datadir"`
	EngineBinary    string   `toml:"engine"`
	EngineArgs      []string `toml:"engine_args"`
	RPCAddr         string   `toml:"rpc_addr"`
	Testnet         *bool    `toml:"testnet"`
	Regtest         *bool    `toml:"regtest"`
	ReadyTimeout    string   `toml:"ready_timeout"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	StartMinimized  *bool    `toml:"min"`
	StartHidden     *bool    `toml:"hide"`
	Splash          *bool    `toml:"splash"`
	DisableWallet   *bool    `toml:"disable_wallet"`
	Language        string   `toml:"lang"`
	ShutdownPoll    string   `toml:"shutdown_poll"`
	BarrierPoll     string   `toml:"barrier_poll"`
	LogLevel        string   `toml:"log_level"`
	LogFile         string   `toml:"log_file"`
	CrashLog        string   `toml:"crash_log"`
	WatchConfig     *bool    `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.walletshell/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".walletshell", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("datadir", fc.DataDir, &cfg.DataDir)
	s.setString("engine", fc.EngineBinary, &cfg.EngineBinary)
	s.setStrings("engine-arg", fc.EngineArgs, &cfg.EngineArgs)
	s.setString("rpcaddr", fc.RPCAddr, &cfg.RPCAddr)
	s.setString("lang", fc.Language, &cfg.Language)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("crash-log", fc.CrashLog, &cfg.CrashLog)

	if err := s.setDuration("ready-timeout", fc.ReadyTimeout, &cfg.ReadyTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-poll", fc.ShutdownPoll, &cfg.ShutdownPoll); err != nil {
		return err
	}
	if err := s.setDuration("barrier-poll", fc.BarrierPoll, &cfg.BarrierPoll); err != nil {
		return err
	}

	s.setBool("testnet", fc.Testnet, &cfg.Testnet)
	s.setBool("regtest", fc.Regtest, &cfg.Regtest)
	s.setBool("min", fc.StartMinimized, &cfg.StartMinimized)
	s.setBool("hide", fc.StartHidden, &cfg.StartHidden)
	s.setBool("splash", fc.Splash, &cfg.Splash)
	s.setBool("disablewallet", fc.DisableWallet, &cfg.DisableWallet)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
