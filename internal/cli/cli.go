package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
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

// Options holds the parsed command-line configuration for modcat.
type Options struct {
	Root        string
	SearchPaths []string
	LogFormat   string
	LogLevel    string
	List        bool
	Specs       []string
}

// pathList collects the values of a repeatable string flag.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

// Parse processes command-line arguments. It returns the populated Options,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("modcat", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
modcat - Inspects the modules of an HCL module tree.

Usage:
  modcat [options] MODULE...
  modcat [options] -list

Arguments:
  MODULE
    A module name or path, written the way a manifest would request it.

Options:
`)
		flagSet.PrintDefaults()
	}

	rootFlag := flagSet.String("root", ".", "Root directory of the module tree.")
	var searchFlag pathList
	flagSet.Var(&searchFlag, "search", "Additional directory to resolve modules in. May be repeated.")
	listFlag := flagSet.Bool("list", false, "List every manifest under the root instead of loading modules.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	specs := flagSet.Args()
	if !*listFlag && len(specs) == 0 {
		slog.Debug("No modules requested, printing usage and exiting.")
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
	slog.Debug("CLI parameter validation complete.")

	opts := &Options{
		Root:        *rootFlag,
		SearchPaths: searchFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		List:        *listFlag,
		Specs:       specs,
	}
	slog.Debug("CLI parser finished successfully.", "options", opts)
	return opts, false, nil
}
