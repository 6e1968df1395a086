package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/lineview/internal/app"
	"github.com/dshills/lineview/internal/config"
	"github.com/dshills/lineview/internal/logging"
	"github.com/dshills/lineview/internal/renderer/backend"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
	tty        string
	noMouse    bool
	noEcho     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "lineview",
		Short: "Interactive shell line editor",
		Long: `lineview edits a command line in place on the terminal, with multi-line
commands, wide characters and styled prompts. Submitted lines are echoed
back below the prompt.

Keys: Enter submits (a trailing backslash or Alt-Enter continues the
command), Ctrl-C cancels the line, Ctrl-L clears the screen and Ctrl-D
on an empty line exits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEditor(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "Path to configuration file (TOML or YAML)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file; overrides the config file")
	flags.StringVar(&opts.tty, "tty", "", "Terminal device to run on (default: the controlling terminal)")
	flags.BoolVar(&opts.noMouse, "no-mouse", false, "Disable mouse reporting")
	flags.BoolVar(&opts.noEcho, "no-echo", false, "Do not echo submitted lines")

	cmd.AddCommand(newRenderCmd())
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.LogFile = opts.logFile
	}
	if opts.noMouse {
		cfg.Mouse = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLogger logs to cfg.LogFile. The terminal belongs to the editor, so
// without a log file nothing is logged.
func openLogger(cfg *config.Config) (*logging.Logger, func(), error) {
	if cfg.LogFile == "" {
		return logging.Nop(), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Level()
	logCfg.Output = f
	return logging.New(logCfg), func() { _ = f.Close() }, nil
}

func runEditor(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if opts.tty == "" {
		f, ok := cmd.InOrStdin().(*os.File)
		if !ok || !backend.IsTerminal(f) {
			return errors.New("standard input is not a terminal")
		}
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	term, err := backend.OpenTerminal(opts.tty)
	if err != nil {
		return err
	}
	if err := term.Init(); err != nil {
		_ = term.Close()
		return err
	}
	defer func() { _ = term.Close() }()

	var onSubmit app.SubmitFunc
	if !opts.noEcho {
		onSubmit = func(line string) string { return line }
	}

	application, err := app.New(term, app.Options{
		Config:     cfg,
		ConfigPath: opts.configPath,
		Logger:     log,
		OnSubmit:   onSubmit,
	})
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	// Interrupts arrive as Ctrl-C keys in raw mode; these end the session.
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	runErr := application.Run(ctx)
	_, _ = io.WriteString(term, "\r\n")
	return runErr
}

// contextOrBackground returns ctx, or a background context when ctx is nil.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
