// Package cmd implements the lse CLI commands.
//
// The root command loads lse.yaml from the project directory, configures
// logging and error reporting, and dispatches to subcommands (inspect, fonts,
// version).
package cmd

import (
	"fmt"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lightsource/lse/cmd/lse/internal/config"
	"github.com/lightsource/lse/pkg/errors"
	"github.com/lightsource/lse/pkg/resource"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	fs       vfs.FileSystem
	dir      string
	logLevel string

	cfg    *config.Resolved
	logger *zap.Logger
}

func (o *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.dir, "config", "C", ".", "project directory containing "+config.FileName)
	fs.StringVar(&o.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// complete resolves the configuration and installs the logger.
func (o *globalOptions) complete() error {
	cfg, err := config.Resolve(o.fs, o.dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		if cfg.LogLevel, err = zapcore.ParseLevel(o.logLevel); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	o.cfg = cfg

	logger, err := newLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	o.logger = logger
	resource.SetLogger(logger)
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: cfg.LogDevelopment})
	return nil
}

func (o *globalOptions) close() {
	if o.logger != nil {
		_ = o.logger.Sync()
	}
}

func newLogger(level zapcore.Level, development bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Named("lse"), nil
}

// NewRootCommand creates the lse command tree reading from the OS filesystem.
func NewRootCommand() *cobra.Command {
	return newRootCommand(osfs.New())
}

func newRootCommand(fs vfs.FileSystem) *cobra.Command {
	opts := &globalOptions{fs: fs}
	cmd := &cobra.Command{
		Use:   "lse",
		Short: "Inspect assets with the lse resource runtime",
		Long: `lse loads images and fonts through the same stores an application
uses, and reports their state, size and metrics.

Configuration is read from lse.yaml in the project directory (--config).`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.complete()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			opts.close()
		},
	}
	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(newInspectCommand(opts))
	cmd.AddCommand(newFontsCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))
	return cmd
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func newVersionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show the lse version. When the project directory holds a readable
configuration, the project name and pinned engine version are shown too.`,
		Args: cobra.NoArgs,
		// Version does not require a valid project.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lse version %s (built %s)\n", Version, BuildTime)
			cfg, err := config.Resolve(opts.fs, opts.dir)
			if err != nil {
				return
			}
			fmt.Fprintf(out, "project %s at %s (engine %s)\n", cfg.ProjectName, cfg.Root, cfg.EngineVersion)
		},
	}
}
