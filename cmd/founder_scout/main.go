// Package main provides the founder_scout command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "founder_scout",
	Short: "Founder extraction for startup directory pages",
	Long: `founder_scout fetches organization pages, extracts the people listed as founders
and stores them with fill-only merging.

Storage is PostgreSQL (--database-url or DATABASE_URL) or a local SQLite file
(--sqlite or SQLITE_PATH). Command-line flags override values from --config.`,
	SilenceUsage: true,
}

var (
	globalConfigPath       string
	globalExtractionConfig string
	globalDatabaseURL      string
	globalSQLitePath       string
	globalLogLevel         string
	globalVerbose          bool
)

func init() {
	addGlobalFlags(rootCmd)
}

func addGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&globalConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.StringVar(&globalExtractionConfig, "extraction-config", "", "Path to an extraction tuning file (markers, denylists, bounds)")
	flags.StringVar(&globalDatabaseURL, "database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	flags.StringVar(&globalSQLitePath, "sqlite", "", "SQLite database file (defaults to SQLITE_PATH env var)")
	flags.StringVar(&globalLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVarP(&globalVerbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
