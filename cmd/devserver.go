package cmd

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AMANN-N/smart-practice/internal/devserver"
	"github.com/AMANN-N/smart-practice/internal/logging"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run an in-memory practice service for local development",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		seedPath, _ := cmd.Flags().GetString("seed")
		streak, _ := cmd.Flags().GetInt("streak")
		logFile, _ := cmd.Flags().GetString("log-file")

		var seed []byte
		if seedPath != "" {
			data, err := os.ReadFile(seedPath)
			if err != nil {
				return fmt.Errorf("read seed: %w", err)
			}
			seed = data
		}
		kbs, err := devserver.LoadSeed(seed)
		if err != nil {
			return err
		}

		// Without a log file the server owns the terminal, so log there.
		log, err := zap.NewDevelopment()
		if logFile != "" {
			log, err = logging.New(logFile, "info")
		}
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		gin.SetMode(gin.ReleaseMode)
		defer func() { _ = log.Sync() }()

		srv := devserver.New(devserver.NewTutor(kbs, streak), log)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d topic(s) on http://%s (Ctrl+C to stop)\n", len(kbs), addr)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	devserverCmd.Flags().String("addr", "127.0.0.1:8000", "Listen address")
	devserverCmd.Flags().String("seed", "", "YAML knowledge base file (default: built-in seed)")
	devserverCmd.Flags().Int("streak", devserver.DefaultMasteryStreak, "Correct answers in a row needed to master a concept")
	devserverCmd.Flags().String("log-file", "", "Write request logs to this file")
}
