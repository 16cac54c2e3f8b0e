// Package main is the entry point for the encstatus command.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage marks errors caused by bad command lines.
var errUsage = errors.New("usage")

type options struct {
	ConfigPath    string
	WorkspacePath string
	LogLevel      string
	Args          []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if len(opts.Args) == 0 {
		fmt.Fprintln(stderr, "Error: missing command")
		return 2
	}

	a, err := newApp(opts, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer a.close()

	if err := a.dispatch(opts.Args[0], opts.Args[1:]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("encstatus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.WorkspacePath, "workspace", "", "Workspace folder")
	fs.StringVar(&opts.WorkspacePath, "w", "", "Workspace folder (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "encstatus - encoding and line ending status of files\n\n")
		fmt.Fprintf(stderr, "Usage: encstatus [options] command [arguments]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  status FILE...               Show the encoding state of each file\n")
		fmt.Fprintf(stderr, "  set FILE ENCODING            Store the encoding of a file\n")
		fmt.Fprintf(stderr, "  convert [-n] FILE ENCODING   Re-encode a file's content\n")
		fmt.Fprintf(stderr, "  eol [-n] FILE CRLF|CR|LF     Rewrite a file's line endings\n")
		fmt.Fprintf(stderr, "  bom add|remove FILE          Add or remove a byte-order mark\n")
		fmt.Fprintf(stderr, "  watch FILE...                Print the state whenever it changes\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if showVersion {
		fmt.Fprintf(stderr, "encstatus %s\n", version)
		fmt.Fprintf(stderr, "Commit: %s\n", commit)
		fmt.Fprintf(stderr, "Built: %s\n", date)
		return opts, flag.ErrHelp
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, errUsage
	}

	opts.Args = fs.Args()

	// Without a workspace, the directory of the first file is the workspace.
	if opts.WorkspacePath == "" {
		if file := firstFile(opts.Args); file != "" {
			if abs, err := filepath.Abs(file); err == nil {
				opts.WorkspacePath = filepath.Dir(abs)
			}
		}
	}
	return opts, nil
}

// firstFile returns the first file argument of a command line.
func firstFile(args []string) string {
	if len(args) < 2 {
		return ""
	}
	rest := args[1:]
	if args[0] == "bom" && len(rest) > 1 {
		rest = rest[1:]
	}
	for _, a := range rest {
		if len(a) > 0 && a[0] != '-' {
			return a
		}
	}
	return ""
}
