package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tootarchive/pkg/auth"
	"tootarchive/pkg/config"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored instance credentials",
	Long: `Manage the account credentials used for the one-time token grant.

Credentials are stored per instance host using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

The password is only ever sent to the instance once, when the access
token is first obtained; after that the stored token in the archive is
used. Removing credentials does not revoke an already granted token.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for an instance",
	Long: `Prompt for account credentials and store them securely.

The credentials are stored under the configured instance host, so pass
--server (or configure one) to choose which instance they belong to.`,
	Example: `  # Store credentials for the configured instance
  tootarchive auth login

  # Store credentials for a specific instance
  tootarchive auth login --server https://example.social`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials for an instance",
	Example: `  # Remove credentials for the configured instance
  tootarchive auth logout

  # Remove credentials for a specific instance
  tootarchive auth logout --server https://example.social`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
}

// resolveHost loads the configuration and returns the instance host
func resolveHost() (string, error) {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.Host(), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	host, err := resolveHost()
	if err != nil {
		return err
	}

	creds, err := auth.NewTerminalProvider(host).Credentials()
	if err != nil {
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	if err := auth.SaveToKeyring(host, creds); err == nil {
		fmt.Printf("Credentials for %s stored in system keychain\n", host)
		return nil
	}

	// No usable keychain: fall back to the encrypted credential file.
	provider, err := auth.NewEncryptedFileProvider("", host)
	if err != nil {
		return fmt.Errorf("failed to open encrypted credential store: %w", err)
	}
	if err := provider.Save(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	fmt.Printf("Credentials for %s stored in encrypted file\n", host)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	host, err := resolveHost()
	if err != nil {
		return err
	}

	removed := false
	if err := auth.DeleteFromKeyring(host); err == nil {
		removed = true
	}

	provider, err := auth.NewEncryptedFileProvider("", host)
	if err == nil {
		if err := provider.Delete(); err == nil {
			removed = true
		} else if !errors.Is(err, auth.ErrCredentialsNotFound) {
			return fmt.Errorf("failed to remove encrypted credentials: %w", err)
		}
	}

	if !removed {
		fmt.Fprintf(os.Stderr, "no stored credentials for %s\n", host)
		return nil
	}
	fmt.Printf("Credentials for %s removed\n", host)
	return nil
}
