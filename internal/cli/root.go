package cli

import (
	"github.com/spf13/cobra"

	"github.com/seuros/jogo/internal/config"
)

var Version string

// Flag overrides shared by every command that loads configuration.
var (
	flagDatabaseURL string
	flagPort        string
	flagDataDir     string
	flagStoreDriver string
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "jogo",
	Short: "Marketing funnel builder API",
	Long: `Jogo - build, publish and measure marketing funnels.

Jogo serves the REST API behind the funnel editor: funnel and template
management, visitor tracking and per-day conversion analytics.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string) error {
	Version = version
	RootCmd.Version = version
	return RootCmd.Execute()
}

// loadConfig reads configuration with the persistent flags applied on top.
func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(config.Overrides{
		DatabaseURL: flagDatabaseURL,
		Port:        flagPort,
		DataDir:     flagDataDir,
		StoreDriver: flagStoreDriver,
	})
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flags.StringVar(&flagPort, "port", "", "HTTP port (overrides PORT)")
	flags.StringVar(&flagDataDir, "data-dir", "", "Directory for the GeoIP database (overrides DATA_DIR)")
	flags.StringVar(&flagStoreDriver, "store", "", "Store driver: postgres, mongo or memory (overrides STORE_DRIVER)")

	setupSelfUpgrade()
}
