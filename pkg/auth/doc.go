// Package auth supplies the credentials used for the one-time password
// grant against a Mastodon instance.
//
// The core protocol code depends only on the Provider interface; the
// concrete implementations cover the usual deployment shapes:
//   - TerminalProvider: interactive prompt, password read without echo
//   - EnvironmentProvider: TOOTARCHIVE_USERNAME / TOOTARCHIVE_PASSWORD
//   - KeyringProvider: system keychain (stored via 'tootarchive auth login')
//   - EncryptedFileProvider: PBKDF2 + AES-GCM encrypted file fallback
//
// Default builds the chain the CLI uses: keyring, encrypted file,
// environment, then the interactive prompt as a last resort.
//
// Note that credentials are only needed once per archive: the resulting
// access token is persisted in the record store and reused afterwards.
package auth
