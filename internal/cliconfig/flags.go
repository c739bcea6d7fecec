package cliconfig

import (
	"fmt"

	"github.com/spf13/pflag"
)

// RegisterFlags binds cfg to fs. cfgPath receives --conf.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config, cfgPath *string) {
	fs.StringVar(cfgPath, "conf", "", fmt.Sprintf("path to config file (default: %s)", DefaultConfigPath()))
	fs.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "data directory")

	fs.StringVar(&cfg.EngineBinary, "engine", cfg.EngineBinary, "node daemon binary")
	fs.StringArrayVar(&cfg.EngineArgs, "engine-arg", cfg.EngineArgs, "extra argument passed to the node daemon (repeatable)")
	fs.StringVar(&cfg.RPCAddr, "rpcaddr", cfg.RPCAddr, "node RPC address polled for readiness")
	fs.BoolVar(&cfg.Testnet, "testnet", cfg.Testnet, "use the test network")
	fs.BoolVar(&cfg.Regtest, "regtest", cfg.Regtest, "use the regression test network")
	fs.DurationVar(&cfg.ReadyTimeout, "ready-timeout", cfg.ReadyTimeout, "how long to wait for the node to become ready")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long to wait for the node to stop before killing it")

	fs.BoolVar(&cfg.StartMinimized, "min", cfg.StartMinimized, "start minimized")
	fs.BoolVar(&cfg.StartHidden, "hide", cfg.StartHidden, "start hidden")
	fs.BoolVar(&cfg.Splash, "splash", cfg.Splash, "show splash while starting")
	fs.BoolVar(&cfg.DisableWallet, "disablewallet", cfg.DisableWallet, "run without a wallet")
	fs.BoolVar(&cfg.ResetSettings, "resetguisettings", cfg.ResetSettings, "reset saved settings on exit")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "language, for example de_DE")

	fs.BoolVar(&cfg.Resync, "resync", cfg.Resync, "delete the block database and resync")
	fs.BoolVar(&cfg.Rescan, "rescan", cfg.Rescan, "rescan the block chain for missing wallet transactions")
	fs.BoolVar(&cfg.Reindex, "reindex", cfg.Reindex, "rebuild the block index")
	fs.IntVar(&cfg.ZapWalletTxes, "zapwallettxes", cfg.ZapWalletTxes, "delete wallet transactions and recover them (1 keeps metadata, 2 drops it)")
	fs.BoolVar(&cfg.UpgradeWallet, "upgradewallet", cfg.UpgradeWallet, "upgrade the wallet to the latest format")
	fs.BoolVar(&cfg.SalvageWallet, "salvagewallet", cfg.SalvageWallet, "recover private keys from a corrupt wallet")

	fs.DurationVar(&cfg.ShutdownPoll, "shutdown-poll", cfg.ShutdownPoll, "how often the node's shutdown flag is polled")
	fs.DurationVar(&cfg.BarrierPoll, "barrier-poll", cfg.BarrierPoll, "sleep between shutdown barrier checks")
	_ = fs.MarkHidden("shutdown-poll")
	_ = fs.MarkHidden("barrier-poll")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file (defaults to <datadir>/debug.log)")
	fs.StringVar(&cfg.CrashLog, "crash-log", cfg.CrashLog, "Go runtime crash output (defaults to <datadir>/crash.log)")
	fs.BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "restart when the config file changes")
}

// ChangedFlags returns the names of the flags set on the command line.
func ChangedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// Load applies the config file at path, when it exists, and the
// environment on top of cfg without overriding flags set on the command
// line, then validates the result.
func Load(cfg *Config, path string, changed map[string]bool) error {
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}
