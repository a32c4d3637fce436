// Command apsched is the planning engine's CLI entry point, grounded in
// the teacher's cmd/mrp/main.go flag parsing and exit-code conventions,
// adapted to delegate execution to commands.RunCommand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/aps-engine/aps/pkg/interfaces/cli/commands"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "config/settings.json", "Path to the run configuration file")
		format     = flag.String("format", "text", "Output format: text, json, csv")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show this help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		os.Exit(0)
	}

	cmd := commands.NewRunCommand(commands.Config{
		ConfigPath: *configPath,
		Format:     *format,
		Verbose:    *verbose,
	})

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Print(`apsched - Advanced Planning & Scheduling engine

USAGE:
    apsched -config <path>              # Run with the given settings file

OPTIONS:
    -config <path>   Path to the run configuration file (default: config/settings.json)
    -format <fmt>    Output format: text, json, csv (default: text)
    -verbose         Enable verbose logging
    -help            Show this help message

CONFIGURATION FILE:
    See config/settings.json for an example covering data_paths,
    run_config, active_constraints, and the objective weight sections.

EXAMPLES:
    apsched -config config/settings.json -verbose
    apsched -config config/settings.json -format json
`)
}
