package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (WALLETSHELL_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("datadir", os.Getenv("WALLETSHELL_DATADIR"), &cfg.DataDir)
	s.setString("engine", os.Getenv("WALLETSHELL_ENGINE"), &cfg.EngineBinary)
	s.setString("rpcaddr", os.Getenv("WALLETSHELL_RPC_ADDR"), &cfg.RPCAddr)
	s.setString("lang", os.Getenv("WALLETSHELL_LANG"), &cfg.Language)
	s.setString("log-level", os.Getenv("WALLETSHELL_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-file", os.Getenv("WALLETSHELL_LOG_FILE"), &cfg.LogFile)
	s.setString("crash-log", os.Getenv("WALLETSHELL_CRASH_LOG"), &cfg.CrashLog)

	if err := s.setDuration("ready-timeout", os.Getenv("WALLETSHELL_READY_TIMEOUT"), &cfg.ReadyTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("WALLETSHELL_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-poll", os.Getenv("WALLETSHELL_SHUTDOWN_POLL"), &cfg.ShutdownPoll); err != nil {
		return err
	}
	if err := s.setDuration("barrier-poll", os.Getenv("WALLETSHELL_BARRIER_POLL"), &cfg.BarrierPoll); err != nil {
		return err
	}

	s.setBoolFromString("testnet", os.Getenv("WALLETSHELL_TESTNET"), &cfg.Testnet)
	s.setBoolFromString("regtest", os.Getenv("WALLETSHELL_REGTEST"), &cfg.Regtest)
	s.setBoolFromString("min", os.Getenv("WALLETSHELL_MIN"), &cfg.StartMinimized)
	s.setBoolFromString("hide", os.Getenv("WALLETSHELL_HIDE"), &cfg.StartHidden)
	s.setBoolFromString("splash", os.Getenv("WALLETSHELL_SPLASH"), &cfg.Splash)
	s.setBoolFromString("disablewallet", os.Getenv("WALLETSHELL_DISABLE_WALLET"), &cfg.DisableWallet)
	s.setBoolFromString("watch-config", os.Getenv("WALLETSHELL_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
