package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reasonchain/core/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	// rootLogger is the base logger built from the resolved CLI flags;
	// subcommands derive component loggers from it via log.WithComponent.
	rootLogger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reasonctl",
	Short: "reasonctl manages reasoning-chain sessions",
	Long: `reasonctl operates a reasonchain-core session store directly
against its data directory: create sessions, drive step execution,
validate and repair session health, resolve lock contention, and run
the startup restoration ladder.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"reasonctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("data-dir", "./data", "Session data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	rootLogger = log.New(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
