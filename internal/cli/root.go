// Package cli wires configuration, logging and the job manager together and
// hands the terminal to the shell.
package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"smallsh/internal/clog"
	"smallsh/internal/config"
	"smallsh/internal/execute"
	"smallsh/internal/jobs"
	"smallsh/internal/shell"
	"smallsh/internal/term"
)

type options struct {
	configPath string
	debug      bool
	logFile    string
	color      string
	logLevel   string
}

func newRootCmd(fsys afero.Fs) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "smallsh",
		Short: "A small interactive shell",
		Long: `smallsh runs commands with optional < and > redirection, in the
foreground or with a trailing & in the background.

Built-ins: cd, status, exit. ^Z toggles foreground-only mode, ^C interrupts
the foreground command only.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fsys, opts)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file or directory (default "+config.DefaultPath()+")")
	flags.BoolVar(&opts.debug, "debug", false, "log debug messages, including every parsed command, and echo warnings to stderr")
	flags.StringVar(&opts.logFile, "log-file", "", "append diagnostic logs to this file")
	flags.StringVar(&opts.color, "color", "", "color error messages: auto, always or never")
	flags.StringVar(&opts.logLevel, "log-level", "", "minimum level written to the log file: debug, info, warn or error")

	return cmd
}

// loadConfig reads the configuration file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command, fsys afero.Fs, opts *options) (*config.Configuration, error) {
	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = opts.debug
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("color") {
		cfg.Color = opts.color
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Configuration) error {
	term.SetColorMode(cfg.Color)
	term.SetOutput(cmd.OutOrStdout())

	session := uuid.NewString()
	level := clog.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = clog.LevelDebug
		clog.MirrorErrors(term.Stderr())
	}
	if err := clog.Configure(cfg.LogFile, level, session); err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = clog.Close() }()

	jm := jobs.NewManager(int(os.Stdout.Fd()))
	if err := jm.Start(); err != nil {
		return fmt.Errorf("install signal handlers: %w", err)
	}
	defer jm.Stop()

	launcher, err := execute.NewLauncher(jm)
	if err != nil {
		return err
	}

	clog.Info("session %s started, pid %d", session, os.Getpid())
	shell.New(jm, launcher, cfg, shell.WithInput(cmd.InOrStdin())).Run()

	return nil
}

// Execute runs the smallsh command line.
func Execute() error {
	return newRootCmd(afero.NewOsFs()).Execute()
}
