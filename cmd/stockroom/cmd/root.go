package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmcleod/stockroom/internal/config"
	"github.com/jmcleod/stockroom/internal/logging"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	configPath      string
	dataDir         string
	apiURL          string
	refreshURL      string
	logLevel        string
	coalesceRefresh bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stockroom",
	Short: "Stockroom is a client for the inventory management API",
	Long: `Sign in to the inventory API, browse and edit its collections, and
serve the single-page inventory client.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding the session store")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the inventory API")
	rootCmd.PersistentFlags().StringVar(&refreshURL, "refresh-url", "", "Token refresh endpoint")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&coalesceRefresh, "coalesce-refresh", false, "Share one token refresh between concurrent requests")
}

// loadConfig layers command-line flags over the file and environment
// configuration.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		c.Session.DataDir = dataDir
	}
	if flags.Changed("api-url") {
		c.API.BaseURL = apiURL
	}
	if flags.Changed("refresh-url") {
		c.API.RefreshURL = refreshURL
	}
	if flags.Changed("log-level") {
		c.Logging.Level = logging.Level(logLevel)
	}
	if flags.Changed("coalesce-refresh") {
		c.API.CoalesceRefresh = coalesceRefresh
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = c
	logger = logging.New(cmd.ErrOrStderr(), c.Logging.Level, c.Logging.Format)
	return nil
}
