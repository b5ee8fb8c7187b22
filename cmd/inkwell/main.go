// Package main is the entry point for the inkwell document tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	logLevel   string
	dictionary string
	language   string
	pluginDir  string
	storePath  string
	envFile    string
	color      bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("inkwell", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.dictionary, "dict", "", "Spellcheck word list")
	fs.StringVar(&opts.language, "lang", "", "Document language (BCP 47)")
	fs.StringVar(&opts.pluginDir, "plugins", "", "Plugin manifest directory")
	fs.StringVar(&opts.storePath, "db", "", "Document database path")
	fs.StringVar(&opts.envFile, "env-file", "", "Read INKWELL_* variables from a dotenv file")
	fs.BoolVar(&opts.color, "color", false, "Colorize command output")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "inkwell - plugin-driven rich-text documents\n\n")
		fmt.Fprintf(stderr, "Usage: inkwell [options] <command> [args]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-20s %s\n", c.usage, c.summary)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nDocuments are JSON node lists; \"-\" reads standard input.\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	color.NoColor = !opts.color

	if showVersion {
		fmt.Fprintf(stdout, "inkwell %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
		fs.Usage()
		return exitUsage
	}
	if len(rest)-1 < cmd.minArgs || len(rest)-1 > cmd.maxArgs {
		fmt.Fprintf(stderr, "Usage: inkwell %s\n", cmd.usage)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	logger := logging.NewWithWriter(cfg.Log, stderr)
	defer logger.Sync() //nolint:errcheck

	e := &env{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
	}
	if err := cmd.run(e, rest[1:]); err != nil {
		logger.Debug("command failed", zap.String("command", cmd.name), zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// loadConfig reads the configuration file, then the environment, then the
// command-line overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	var lookup config.LookupFunc
	if opts.envFile != "" {
		var err error
		if lookup, err = config.EnvFileLookup(opts.envFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.dictionary != "" {
		cfg.Spellcheck.Dictionary = opts.dictionary
	}
	if opts.language != "" {
		cfg.Spellcheck.Language = opts.language
	}
	if opts.pluginDir != "" {
		cfg.Plugins.Dir = opts.pluginDir
	}
	if opts.storePath != "" {
		cfg.Store.Path = opts.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
