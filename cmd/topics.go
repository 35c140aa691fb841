package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List topics available for practice",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.RequestTimeout)
		defer cancel()
		topics, err := d.client.ListTopics(ctx)
		if err != nil {
			return fmt.Errorf("list topics: %w", err)
		}

		if len(topics) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No topics found. Ingest one with: smartpractice ingest <topic>")
			return nil
		}
		for _, t := range topics {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}
