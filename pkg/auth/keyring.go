package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "tootarchive"

// KeyringProvider reads credentials for a host from the system keychain.
type KeyringProvider struct {
	host string
}

// NewKeyringProvider creates a keyring-backed credential provider for host
func NewKeyringProvider(host string) (*KeyringProvider, error) {
	// Test if keyring is available
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringProvider{host: host}, nil
}

// Credentials returns credentials stored in the keychain for this host
func (k *KeyringProvider) Credentials() (*Credentials, error) {
	data, err := keyring.Get(keyringService, k.host)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// SaveToKeyring stores credentials for a host in the system keychain
func SaveToKeyring(host string, creds *Credentials) error {
	if creds == nil || creds.Username == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := keyring.Set(keyringService, host, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// DeleteFromKeyring removes credentials for a host from the system keychain
func DeleteFromKeyring(host string) error {
	err := keyring.Delete(keyringService, host)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
