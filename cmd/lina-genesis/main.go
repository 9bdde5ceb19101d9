package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"lina-genesis/chaincfg"
	"lina-genesis/config"
)

func parseLogLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// setupLogging returns a function closing the log file, if any.
func setupLogging(cfg *config.Config) func() {
	closeFn := func() {}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logrus.SetOutput(file)
			closeFn = func() { file.Close() }
		} else {
			logrus.Warnf("Failed to open log file %s: %v", cfg.LogFile, err)
		}
	}

	if cfg.LogFormat == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	logrus.SetLevel(parseLogLevel(cfg.LogLevel))
	return closeFn
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "lina-genesis"
	app.Usage = "Generate the mainnet chain spec from testnet records and chain data"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.Flags = appFlags()
	app.Action = action
	return app
}

func action(c *cli.Context) error {
	cfg, err := config.Load(c.String(envFileFlag.Name))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)

	closeLog := setupLogging(cfg)
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		return err
	}
	params, ok := chaincfg.ParamsForNetwork(cfg.Network)
	if !ok {
		return fmt.Errorf("unknown network %q", cfg.Network)
	}

	logrus.WithFields(logrus.Fields{
		"network": params.Name,
		"target":  cfg.TargetEpoch,
		"rpc":     cfg.RPCURL,
		"output":  cfg.OutputDir,
	}).Info("Starting genesis generation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, params)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatalf("Genesis generation failed: %v", err)
	}
}
