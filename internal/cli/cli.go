package cli

import (
	"flag"
	"fmt"
	"io"
)

// Version is the reported service version.
const Version = "0.3.0"

// CLIArgs are the command-line arguments for one server run. Flags override
// environment settings; empty values mean "use the environment".
type CLIArgs struct {
	// Addr overrides the HTTP listen address.
	Addr string

	// StorageDir overrides the file storage directory.
	StorageDir string

	// EnvFile is an explicit .env path to load before reading settings.
	EnvFile string

	// Driver overrides the browser driver name.
	Driver string

	// ShowVersion / ShowHelp short-circuit startup.
	ShowVersion bool
	ShowHelp    bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not read
// os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("webshot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		addr        = fs.String("addr", "", "HTTP listen address (overrides WEBSHOT_ADDR)")
		storageDir  = fs.String("storage-dir", "", "Capture storage directory (overrides WEBSHOT_STORAGE_DIR)")
		envFile     = fs.String("env-file", "", "Path to a .env file to load")
		driver      = fs.String("driver", "", "Browser driver name (overrides WEBSHOT_DRIVER)")
		showVersion = fs.Bool("version", false, "Print version and exit")
	)

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return &CLIArgs{ShowHelp: true, RawArgs: args}, nil
		}
		return nil, fmt.Errorf("parse args: %w", err)
	}

	return &CLIArgs{
		Addr:        *addr,
		StorageDir:  *storageDir,
		EnvFile:     *envFile,
		Driver:      *driver,
		ShowVersion: *showVersion,
		RawArgs:     args,
	}, nil
}

// Usage returns the help text printed for --help.
func Usage() string {
	return `webshot - headless browser capture service

Usage:
  webshot [flags]

Flags:
  --addr string         HTTP listen address (overrides WEBSHOT_ADDR)
  --storage-dir string  Capture storage directory (overrides WEBSHOT_STORAGE_DIR)
  --env-file string     Path to a .env file to load
  --driver string       Browser driver name (overrides WEBSHOT_DRIVER)
  --version             Print version and exit
  --help                Print this help

All other settings come from WEBSHOT_* environment variables.
`
}
