package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/martinsuchenak/snmpinfo/cmd/poll"
	"github.com/martinsuchenak/snmpinfo/internal/exitcode"
	"github.com/martinsuchenak/snmpinfo/internal/log"
	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "snmpinfo",
		Version:     version,
		Usage:       "SNMPv3 device and port inventory collector",
		Description: "Walks configured OIDs of device groups over SNMPv3 and prints one JSON document per device (commit " + commit + ", built " + date + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"SNMPINFO_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"SNMPINFO_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.GetString("log-level")
			logFormat := cmd.GetString("log-format")
			log.Configure(logLevel, logFormat)
			return ctx, nil
		},
		Commands: poll.Commands(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.Execute(ctx)
	stop()

	if err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(exitcode.For(err))
	}
}
