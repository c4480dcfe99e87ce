package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dshills/mentions/internal/autocomplete/trigger"
	"github.com/dshills/mentions/internal/host/teafield"
)

func newTeaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tea",
		Short: "Edit a line in a Bubble Tea text input with completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			model := teafield.New(rt.registry, rt.logger,
				teafield.WithMaxItems(rt.cfg.Dropdown.MaxItems),
				teafield.WithStyles(teafield.DefaultStyles(lipgloss.Color(rt.cfg.Dropdown.Highlight))),
			)
			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)

			stopWatch, err := rt.watch(func(reg *trigger.Registry) {
				p.Send(teafield.ReloadMsg{Registry: reg})
			})
			if err != nil {
				return err
			}
			defer stopWatch()

			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("run input: %w", err)
			}
			if m, ok := final.(teafield.Model); ok {
				for _, line := range m.Submitted() {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}
			return nil
		},
	}
}
