package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AMANN-N/smart-practice/internal/client"
	"github.com/AMANN-N/smart-practice/internal/config"
	"github.com/AMANN-N/smart-practice/internal/logging"
	"github.com/AMANN-N/smart-practice/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "smartpractice",
	Short: "Terminal client for Smart Practice",
	Long:  "Smart Practice runs adaptive practice sessions over a topic's knowledge graph in the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the root command. ctx is canceled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/smartpractice/config.yaml)")
	flags.String("base-url", "", "Practice service URL (overrides SMARTPRACTICE_BASE_URL)")
	flags.String("user", "", "User ID sent when starting a session (overrides SMARTPRACTICE_USER)")
	flags.String("db", "", "Path to request journal database (overrides SMARTPRACTICE_DB)")

	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers the persistent flags over the file and environment
// configuration and validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.UserID = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.JournalPath = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the journal path from the config, falling back to
// the default XDG location.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.JournalPath != "" {
		return cfg.JournalPath, store.EnsureDir(cfg.JournalPath)
	}
	return store.DefaultDBPath()
}

// deps holds what every service-facing command needs. Close releases the
// journal and flushes the logger.
type deps struct {
	cfg    config.Config
	log    *zap.Logger
	client *client.HTTPClient
	store  *store.Store
}

func (d *deps) Close() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.log.Warn("close journal", zap.Error(err))
		}
	}
	_ = d.log.Sync()
}

// buildDeps loads the config, opens the logger and, when enabled, the
// request journal, and builds an HTTP client that records into it.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	d := &deps{cfg: cfg, log: log}

	var opts []client.Option
	if cfg.JournalEnabled {
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		d.store = st
		rec := client.NewRecorder(st.Journal(), log.Named("journal"))
		opts = append(opts, client.WithObserver(rec.Observe))
	}

	d.client = client.NewHTTPClient(cfg.BaseURL, opts...)
	log.Info("client configured",
		zap.String("base_url", cfg.BaseURL),
		zap.String("user_id", cfg.UserID),
		zap.Bool("journal", cfg.JournalEnabled),
	)
	return d, nil
}
