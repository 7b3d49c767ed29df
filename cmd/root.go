package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Global flags
var (
	configFile string
	logLevel   string
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "encore",
	Short: "Preview and collect tracks from the Spotify catalog",
	Long: `encore is a terminal music showcase for the Spotify catalog.

It browses a curated library of artists and albums, plays 30-second
preview clips through the local audio output, and keeps a list of
favorite tracks in durable storage (a local file, SQLite, Postgres,
Redis or S3).

Spotify client credentials are read from ~/.config/encore/config.yaml,
ENCORE_SPOTIFY_CLIENT_ID / ENCORE_SPOTIFY_CLIENT_SECRET, or the plain
SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET variables (a .env file in the
working directory is loaded first).`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.config/encore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default stderr)")
}
