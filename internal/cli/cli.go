package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/packforge/packforge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("packforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
packforge - reproducible multi-platform builds for a single CLI tool.

Usage:
  packforge [options] [MANIFEST_PATH]

Arguments:
  MANIFEST_PATH
    Path to a single .hcl manifest file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestFlag := flagSet.String("manifest", "", "Path to the manifest file or directory.")
	mFlag := flagSet.String("m", "", "Path to the manifest file or directory (shorthand).")
	lockFlag := flagSet.String("lock", "packforge.lock", "Path to the pinned dependency lock file.")
	outFlag := flagSet.String("out", "result", "Directory published platform outputs land under.")
	systemsFlag := flagSet.String("systems", "", "Comma-separated platform identifiers; empty builds the full matrix.")
	sourceRevFlag := flagSet.String("source-rev", "", "Source revision recorded as the build-identity marker.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Assemble and print descriptors without building.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent platform builds.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *manifestFlag != "" {
		path = *manifestFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	var systems []string
	if *systemsFlag != "" {
		for _, s := range strings.Split(*systemsFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				systems = append(systems, s)
			}
		}
	}

	config, err := app.NewConfig(app.Config{
		ManifestPath: path,
		LockPath:     *lockFlag,
		OutDir:       *outFlag,
		Systems:      systems,
		SourceRev:    *sourceRevFlag,
		DryRun:       *dryRunFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		WorkerCount:  *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
