package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/dshills/mentions/internal/values"
)

func newScrapeCmd() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "scrape [FILE...]",
		Short: "List the prefixed names found in files or stdin",
		Long: "scrape prints every distinct name introduced by the prefix, in the\n" +
			"form a trigger stores it: lowercase and without the prefix.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, size := utf8.DecodeRuneInString(prefix)
			if r == utf8.RuneError || size != len(prefix) {
				return fmt.Errorf("prefix must be a single character, got %q", prefix)
			}

			var raw []string
			if len(args) == 0 {
				found, err := values.ScrapeReader(cmd.InOrStdin(), r)
				if err != nil {
					return err
				}
				raw = found
			}
			for _, path := range args {
				found, err := values.ScrapeFile(path, r)
				if err != nil {
					return err
				}
				raw = append(raw, found...)
			}

			for _, v := range values.Normalize(r, raw) {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "~", "prefix character to scrape")
	return cmd
}
