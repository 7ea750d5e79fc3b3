package auth

import (
	"errors"
	"fmt"
)

// Credentials holds the username and password exchanged for an access
// token during the password grant.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Provider supplies credentials for first-time authentication. The core
// protocol logic only ever sees this interface, so interactive prompting,
// environment variables, the system keychain, and encrypted files are all
// interchangeable.
type Provider interface {
	// Credentials returns the credentials, or ErrCredentialsNotFound when
	// this provider has none to offer.
	Credentials() (*Credentials, error)
}

// Chain tries each provider in order and returns the first credentials
// found. Providers reporting ErrCredentialsNotFound are skipped; any other
// error aborts the chain.
type Chain struct {
	providers []Provider
}

// NewChain creates a provider chain
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Credentials returns credentials from the first provider that has them
func (c *Chain) Credentials() (*Credentials, error) {
	for _, p := range c.providers {
		creds, err := p.Credentials()
		if err != nil {
			if errors.Is(err, ErrCredentialsNotFound) {
				continue
			}
			return nil, err
		}
		if creds != nil {
			return creds, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Default returns the provider chain used by the CLI: keyring, then
// encrypted file, then environment, then an interactive prompt.
func Default(host string) (Provider, error) {
	var providers []Provider

	if kp, err := NewKeyringProvider(host); err == nil {
		providers = append(providers, kp)
	}

	ep, err := NewEncryptedFileProvider("", host)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted credential provider: %w", err)
	}
	providers = append(providers, ep, NewEnvironmentProvider(), NewTerminalProvider(host))

	return NewChain(providers...), nil
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
