package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <topic>",
	Short: "Build a knowledge base for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(args[0])
		if topic == "" {
			return fmt.Errorf("topic name is required")
		}

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.RequestTimeout)
		defer cancel()
		if err := d.client.Ingest(ctx, topic); err != nil {
			return fmt.Errorf("ingest %s: %w", topic, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s.\n", topic)
		return nil
	},
}
