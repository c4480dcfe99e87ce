package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/mentions/internal/values"
)

func newLabelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Inspect and edit a user label file",
		Long: "A label file maps usernames to their labels. A trigger that names\n" +
			"the file completes its usernames. JSON and YAML are chosen by file\n" +
			"extension.",
	}
	cmd.AddCommand(newLabelsListCmd(), newLabelsAddCmd(), newLabelsRemoveCmd())
	return cmd
}

func newLabelsListCmd() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "list FILE",
		Short: "List users and their labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := values.OpenLabels(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if label != "" {
				for _, user := range store.WithLabel(label) {
					fmt.Fprintln(out, user)
				}
				return nil
			}
			for _, user := range store.Usernames() {
				fmt.Fprintf(out, "%s: %s\n", user, strings.Join(store.Labels(user), ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "only list users carrying this label")
	return cmd
}

func newLabelsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add FILE USER LABEL",
		Short: "Give a user a label, creating the file if needed",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := values.OpenLabels(args[0])
			if err != nil {
				return err
			}
			if err := store.AddLabel(args[1], args[2]); err != nil {
				return err
			}
			return store.Save()
		},
	}
}

func newLabelsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm FILE USER",
		Aliases: []string{"remove"},
		Short:   "Remove a user and all their labels",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := values.OpenLabels(args[0])
			if err != nil {
				return err
			}
			if err := store.RemoveUser(args[1]); err != nil {
				return err
			}
			return store.Save()
		},
	}
}
