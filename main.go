package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/quransync/internal/cli"
	"github.com/mrlokans/quransync/internal/config"
	"github.com/mrlokans/quransync/internal/entrypoint"
	"github.com/mrlokans/quransync/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "download":
		cmd = cli.NewDownloadCommand()
	case "daily-verse":
		cmd = cli.NewDailyVerseCommand()
	case "status":
		cmd = cli.NewStatusCommand()
	case "clear-audio":
		cmd = cli.NewClearAudioCommand()
	case "version":
		fmt.Printf("quransync %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
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
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  download      Download surahs for offline reading\n")
	fmt.Fprintf(os.Stderr, "  daily-verse   Print the verse of the day\n")
	fmt.Fprintf(os.Stderr, "  status        Show the offline library and last sync run\n")
	fmt.Fprintf(os.Stderr, "  clear-audio   Delete cached recitation audio\n")
	fmt.Fprintf(os.Stderr, "  version       Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
