// Package log provides the logging abstraction used by every walletshell
// component.
//
// Components depend on the Logger interface only. The shell wires a zerolog
// backed implementation at startup; tests use the no-op logger.
//
// # Usage
//
//	logger, closer, err := log.NewZerologLogger(log.Options{
//	    Level:   "info",
//	    FilePath: filepath.Join(dataDir, "debug.log"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
//	logger.Info("requesting initialize", log.String("component", "coordinator"))
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
package log
