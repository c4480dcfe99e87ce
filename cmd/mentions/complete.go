package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/mentions/internal/autocomplete"
	"github.com/dshills/mentions/internal/autocomplete/session"
	"github.com/dshills/mentions/internal/autocomplete/surface"
	"github.com/dshills/mentions/internal/input/key"
)

const (
	reverseOn  = "\x1b[7m"
	reverseOff = "\x1b[0m"
)

type completeOptions struct {
	tabs   int
	keys   []string
	commit bool
}

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	copts := &completeOptions{}

	cmd := &cobra.Command{
		Use:   "complete TEXT",
		Short: "Type TEXT into a headless field and print the completion state",
		Example: "  mentions complete 'ping ~mu'\n" +
			"  mentions complete 'cc @a' --tab 2 --commit\n" +
			"  mentions complete '~comp' --key Backspace --key Shift+Tab",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			var events []key.Event
			for _, r := range args[0] {
				events = append(events, key.NewRuneEvent(r, key.ModNone))
			}
			for _, spec := range copts.keys {
				ev, err := key.Parse(spec)
				if err != nil {
					return fmt.Errorf("key %q: %w", spec, err)
				}
				events = append(events, ev)
			}
			for i := 0; i < copts.tabs; i++ {
				events = append(events, key.NewSpecialEvent(key.KeyTab, key.ModNone))
			}
			if copts.commit {
				events = append(events, key.NewSpecialEvent(key.KeyEnter, key.ModNone))
			}

			buf := surface.NewBuffer("")
			engine := autocomplete.New(rt.registry, autocomplete.WithLogger(rt.logger))
			for _, ev := range events {
				if !engine.KeyDown(buf, ev) {
					buf.Apply(ev)
				}
				engine.KeyUp(buf, ev)
			}

			snap, ok := engine.Active(buf)
			printState(cmd.OutOrStdout(), buf, snap, ok, isTerminal(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().IntVar(&copts.tabs, "tab", 0, "press Tab this many times after typing")
	cmd.Flags().StringArrayVar(&copts.keys, "key", nil, "press a key after typing (repeatable, e.g. Backspace, Shift+Tab, <CR>)")
	cmd.Flags().BoolVar(&copts.commit, "commit", false, "press Enter last")
	return cmd
}

func printState(w io.Writer, buf *surface.Buffer, snap session.Snapshot, active, color bool) {
	fmt.Fprintf(w, "text: %s\n", buf.Value())
	fmt.Fprintf(w, "caret: %d\n", buf.Caret())
	if !active {
		fmt.Fprintln(w, "no completion")
		return
	}

	fmt.Fprintf(w, "%s %q (%d matches)\n", snap.Target, snap.Query, len(snap.Matches))
	for i, m := range snap.Matches {
		label := string(snap.Prefix) + m
		switch {
		case i != snap.Highlighted:
			fmt.Fprintf(w, "  %s\n", label)
		case color:
			fmt.Fprintf(w, "> %s%s%s\n", reverseOn, label, reverseOff)
		default:
			fmt.Fprintf(w, "> %s\n", label)
		}
	}
}
