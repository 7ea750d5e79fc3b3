package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	serverURL   string
	archiveRoot string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tootarchive",
	Short: "Archive Mastodon timelines, one page per run",
	Long: `tootarchive walks a Mastodon timeline one page at a time and files every
status and account into a plain JSON archive on disk.

Each invocation fetches exactly one page and remembers where it left off,
so the intended way to run it is from cron. Walking "next" reaches ever
older pages until the timeline's history is exhausted; walking "prev"
picks up whatever was posted since the last run.

Credentials are stored securely using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (TOOTARCHIVE_USERNAME / TOOTARCHIVE_PASSWORD)

For more information and examples, visit: https://github.com/yourusername/tootarchive`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.config/tootarchive/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Mastodon instance base URL (e.g. https://mastodon.social)")
	rootCmd.PersistentFlags().StringVarP(&archiveRoot, "root", "r", "", "archive root directory (default: platform data directory)")

	// Version template
	rootCmd.SetVersionTemplate(`tootarchive {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags builds the config override map shared by all commands
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if serverURL != "" {
		flags["server"] = serverURL
	}
	if archiveRoot != "" {
		flags["root"] = archiveRoot
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}
