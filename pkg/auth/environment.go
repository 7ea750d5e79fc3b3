package auth

import "os"

// EnvironmentProvider reads credentials from environment variables.
// This is the non-interactive path for cron-driven archiving.
type EnvironmentProvider struct{}

// NewEnvironmentProvider creates a new environment-based credential provider
func NewEnvironmentProvider() *EnvironmentProvider {
	return &EnvironmentProvider{}
}

// Credentials returns credentials from TOOTARCHIVE_USERNAME and
// TOOTARCHIVE_PASSWORD
func (e *EnvironmentProvider) Credentials() (*Credentials, error) {
	username := os.Getenv("TOOTARCHIVE_USERNAME")
	password := os.Getenv("TOOTARCHIVE_PASSWORD")

	if username == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Username: username,
		Password: password,
	}, nil
}
