package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/mentions/internal/config"
	"github.com/dshills/mentions/internal/host/termfield"
	"github.com/dshills/mentions/internal/renderer/backend"
	"github.com/dshills/mentions/internal/renderer/core"
	"github.com/dshills/mentions/internal/renderer/dropdown"
)

func newEditCmd(opts *rootOptions) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a line in the terminal with completion",
		Long: "edit opens a one-line field. Type a trigger prefix to open the\n" +
			"dropdown, Tab and Shift+Tab to move, Enter to insert, Esc to close.\n" +
			"Submitted lines are printed when the field exits.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			term, err := backend.NewTerminal()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := term.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			var once sync.Once
			shutdown := func() { once.Do(term.Shutdown) }
			defer shutdown()

			theme := themeFromConfig(rt.cfg)
			app, err := termfield.New(term, rt.registry,
				termfield.WithLogger(rt.logger),
				termfield.WithText(text),
				termfield.WithDropdown(dropdown.New(dropdown.Options{
					MaxItems: rt.cfg.Dropdown.MaxItems,
					Border:   rt.cfg.Dropdown.Border,
					Theme:    theme,
				}), theme),
			)
			if err != nil {
				return err
			}

			stopWatch, err := rt.watch(app.Reload)
			if err != nil {
				return err
			}
			defer stopWatch()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runErr := app.Run(ctx)
			stopWatch()
			shutdown()
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}

			for _, line := range app.Submitted() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "initial field text")
	return cmd
}

// themeFromConfig applies the configured highlight colour to the default
// theme. Validation has already accepted the colour.
func themeFromConfig(cfg *config.Config) dropdown.Theme {
	theme := dropdown.DefaultTheme()
	if c, err := core.ColorFromHex(cfg.Dropdown.Highlight); err == nil {
		theme.Highlight = core.DefaultStyle().WithBackground(c)
	}
	return theme
}
