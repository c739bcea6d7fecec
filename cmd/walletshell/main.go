package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bft-labs/walletshell/internal/adapters/console"
	"github.com/bft-labs/walletshell/internal/adapters/engine"
	"github.com/bft-labs/walletshell/internal/adapters/fs"
	"github.com/bft-labs/walletshell/internal/adapters/spawn"
	"github.com/bft-labs/walletshell/internal/adapters/systemd"
	"github.com/bft-labs/walletshell/internal/cliconfig"
	"github.com/bft-labs/walletshell/internal/configwatch"
	"github.com/bft-labs/walletshell/internal/core"
	"github.com/bft-labs/walletshell/internal/crashguard"
	"github.com/bft-labs/walletshell/internal/domain"
	"github.com/bft-labs/walletshell/internal/payment"
	"github.com/bft-labs/walletshell/pkg/log"
)

const helpDescription = `
Run a wallet node in the foreground and keep it healthy.

Highlights:
  - Starts the node daemon in the background and waits until it is ready.
  - Shuts the node down cleanly on Ctrl-C, SIGTERM or when the node asks to stop.
  - Restarts itself with repair options (--resync, --rescan, --reindex, ...).
  - Hands payment URIs to an already running instance.
`

var longHelp = "walletshell\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  walletshell --datadir ~/.walletshell
  walletshell --testnet --min
  walletshell "walletshell:nb1qexample?amount=1.5&label=rent"
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	exitCode := core.ExitSuccess

	root := &cobra.Command{
		Use:           "walletshell [payment-uri...]",
		Short:         "Run a wallet node in the foreground and keep it healthy",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}
			if err := cliconfig.Load(&cfg, cfgFile, cliconfig.ChangedFlags(cmd.Flags())); err != nil {
				return err
			}

			code, err := run(cmd.Context(), cfg, cfgFile, args)
			exitCode = code
			return err
		},
	}

	cliconfig.RegisterFlags(root.Flags(), &cfg, &cfgPath)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.RenderError("walletshell", "Error: "+err.Error()))
		os.Exit(core.ExitFailure)
	}
	os.Exit(exitCode)
}

func run(parent context.Context, cfg cliconfig.Config, cfgFile string, args []string) (int, error) {
	if _, err := fs.ShrinkLog(cfg.LogFile, fs.MaxDebugLog, fs.KeepDebugLog); err != nil {
		fmt.Fprintf(os.Stderr, "shrink %s: %v\n", cfg.LogFile, err)
	}

	logger, closer, err := log.NewZerologLogger(log.Options{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		InstanceID: uuid.NewString(),
	})
	if err != nil {
		return core.ExitFailure, err
	}
	defer closer.Close()

	presenter := crashguard.Presenter(console.NewPresenter())
	if err := crashguard.Install(presenter, logger, crashguard.Options{CrashLog: cfg.CrashLog}); err != nil {
		logger.Warn("crash guard partially installed", log.Err(err))
	}
	defer crashguard.Recover()

	logger.Info("configuration",
		log.String("datadir", cfg.DataDir),
		log.String("engine", cfg.EngineBinary),
		log.Strings("engine_args", cfg.EngineCommandLine()),
		log.String("network", cfg.Network()),
		log.String("rpc_addr", cfg.RPCAddr),
		log.Duration("ready_timeout", cfg.ReadyTimeout),
		log.Bool("disablewallet", cfg.DisableWallet),
		log.Bool("watch_config", cfg.WatchConfig))

	// A running instance takes over our payment URIs, or is raised when
	// there are none.
	payments := payment.NewServer(logger)
	payments.ParseCommandLine(args)
	forward := payments.PendingCommandLine()
	if len(forward) == 0 {
		forward = []string{payment.ShowCommand}
	}
	if err := payment.Forward(cfg.SocketPath(), forward); err != nil {
		if errors.Is(err, domain.ErrAlreadyForwarded) {
			logger.Info("handed command line to running instance")
			return core.ExitSuccess, nil
		}
		logger.Warn("forward to running instance failed", log.Err(err))
	}

	settings := fs.NewSettingsFile(cfg.DataDir)
	opts, err := settings.Load(parent)
	if err != nil {
		logger.Warn("load settings, using defaults", log.Err(err), log.String("path", settings.Path()))
		opts = domain.Options{}
	}
	if cfg.Language != "" {
		opts.Language = cfg.Language
	}
	opts.ResetSettings = cfg.ResetSettings
	startMinimized := cfg.StartMinimized || opts.StartMinimized

	engineCfg := engine.Config{
		Binary:          cfg.EngineBinary,
		Args:            cfg.EngineCommandLine(),
		DataDir:         cfg.DataDir,
		Network:         cfg.Network(),
		RPCAddr:         cfg.RPCAddr,
		ReadyTimeout:    cfg.ReadyTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		DisableWallet:   cfg.DisableWallet,
	}
	if cfg.LogLevel == "debug" {
		engineCfg.Output = os.Stderr
	}
	eng, err := engine.New(engineCfg, logger)
	if err != nil {
		return core.ExitFailure, err
	}

	status := console.NewStatus(os.Stderr)
	defer status.Close()
	monitor := systemd.New(logger)

	c, err := core.New(core.Config{
		Engine:         eng,
		Window:         console.NewWindow(os.Stdout, logger),
		Presenter:      presenter,
		Spawner:        spawn.New(logger),
		Options:        &opts,
		Args:           os.Args,
		StartMinimized: startMinimized,
		StartHidden:    cfg.StartHidden,
		ShutdownPoll:   cfg.ShutdownPoll,
		BarrierPoll:    cfg.BarrierPoll,
	},
		core.WithLogger(logger),
		core.WithEventEmitter(monitor),
		core.WithSplash(status),
		core.WithShutdownStatus(status),
		core.WithShutdownMonitor(monitor),
		core.WithPaymentServer(payments),
		core.WithCleanup(payments.Close),
		core.WithCleanup(settings.ResetIfRequested(&opts)),
	)
	if err != nil {
		return core.ExitFailure, err
	}
	defer c.Close()

	if err := payments.Listen(cfg.SocketPath(), c.Post); err != nil {
		logger.Warn("payment ipc disabled", log.Err(err))
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, stopping", log.String("signal", sig.String()))
			if sig == syscall.SIGTERM {
				monitor.MarkSystemShutdown()
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.WatchConfig && cfgFile != "" {
		w, err := configwatch.New(configwatch.Config{Path: cfgFile}, func() {
			c.Post(func() { c.RequestRestart(os.Args[1:]) })
		}, logger)
		if err != nil {
			return core.ExitFailure, err
		}
		if err := w.Start(ctx); err != nil {
			logger.Warn("config watch disabled", log.Err(err))
		} else {
			defer w.Stop()
		}
	}

	if cfg.Splash && !startMinimized {
		status.ShowSplash()
	}

	c.RequestInitialize()
	code := c.Run(ctx)

	if err := payments.Close(); err != nil {
		logger.Warn("close payment ipc", log.Err(err))
	}
	if err := settings.ResetIfRequested(&opts)(); err != nil {
		logger.Warn("reset settings", log.Err(err))
	} else if !opts.ResetSettings {
		if err := settings.Save(context.Background(), opts); err != nil {
			logger.Warn("save settings", log.Err(err))
		}
	}

	logger.Info("exiting", log.Int("code", code))
	return code, nil
}
