package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mrlokans/grocery-share/internal/cli"
	"github.com/mrlokans/grocery-share/internal/config"
	"github.com/mrlokans/grocery-share/internal/entrypoint"
	"github.com/mrlokans/grocery-share/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// Command is a CLI subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.NewConfig()
	logging.Setup(logging.ParseLevel(cfg.Global.LogLevel))

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		slog.Debug("build info", "version", Version, "commit", Commit)
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	var cmd Command
	switch command {
	case "init":
		cmd = cli.NewInitStoreCommand()

	case "summary":
		cmd = cli.NewSummaryCommand()

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  init      Create the database and its tables\n")
	fmt.Fprintf(os.Stderr, "  summary   Print what each participant owes for a purchase\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
