package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/config"
	"github.com/dshills/mentions/internal/logging"
	"github.com/dshills/mentions/internal/values"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mentions",
		Short: "Inline @user and ~group completion for text fields",
		Long: "mentions completes prefix-triggered references such as @user and ~group\n" +
			"while you type. Values come from the config file, scraped pages, label\n" +
			"files and Lua scripts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "append diagnostics to this file")

	root.AddCommand(
		newEditCmd(opts),
		newTeaCmd(opts),
		newCompleteCmd(opts),
		newScrapeCmd(),
		newLabelsCmd(),
		newVersionCmd(),
	)
	return root
}

// runtime is what every completing command needs.
type runtime struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *trigger.Registry
	closer   io.Closer
}

func (rt *runtime) Close() {
	if rt.closer != nil {
		_ = rt.closer.Close()
	}
}

// setup loads configuration, opens the log and builds the registry.
func setup(ctx context.Context, opts *rootOptions) (*runtime, error) {
	path := opts.configPath
	var loadOpts []config.LoadOption
	if path != "" {
		loadOpts = append(loadOpts, config.Required())
	} else {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, loadOpts...)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		if !logging.ValidLevel(opts.logLevel) {
			return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
		}
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.File = opts.logFile
	}

	rt := &runtime{cfg: cfg, logger: logging.Nop()}
	if cfg.Logging.File != "" {
		logger, closer, err := logging.OpenFile(cfg.Logging.File, logging.Config{
			Level:  logging.ParseLevel(cfg.Logging.Level),
			Prefix: "mentions",
		})
		if err != nil {
			return nil, err
		}
		rt.logger, rt.closer = logger, closer
	}

	reg, err := values.Build(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("build values: %w", err)
	}
	rt.registry = reg
	rt.logger.WithField("config", cfg.Path).Info("loaded %d triggers", reg.Len())
	return rt, nil
}

// watch starts a watcher when the config enables it. The returned stop
// function is always safe to call.
func (rt *runtime) watch(onReload values.ReloadFunc) (stop func(), err error) {
	if !rt.cfg.Watch.Enabled {
		return func() {}, nil
	}
	w, err := values.NewWatcher(rt.cfg, onReload, values.WithWatchLogger(rt.logger))
	if err != nil {
		return nil, fmt.Errorf("watch sources: %w", err)
	}
	rt.logger.Info("watching %d files", len(w.Files()))
	return func() { _ = w.Close() }, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mentions %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
