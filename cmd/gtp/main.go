package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gtp/internal/cli"
	"gtp/internal/cli/commands"
	"gtp/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	cli.InitLogging(os.Stderr, os.Getenv(cli.LogEnv))

	// Create root command
	rootCmd := &cobra.Command{
		Use:           "gtp",
		Short:         "Gradle test processor",
		Long:          `Runs Gradle test tasks, streams per-test results from the build as it runs and keeps the last run's failures for re-running.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Interrupts cancel the run; the build tool gets a grace period to exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
