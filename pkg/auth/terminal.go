package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// TerminalProvider prompts for credentials on the controlling terminal.
// The password is read without echo.
type TerminalProvider struct {
	host string
}

// NewTerminalProvider creates an interactive credential provider for host
func NewTerminalProvider(host string) *TerminalProvider {
	return &TerminalProvider{host: host}
}

// Credentials prompts for a username and password
func (t *TerminalProvider) Credentials() (*Credentials, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Fprintf(os.Stderr, "Username for %s: ", t.host)
	username, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	var password string
	if term.IsTerminal(int(syscall.Stdin)) {
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		password = string(passwordBytes)
	} else {
		// Piped stdin (tests, scripts): fall back to a plain line read
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	if password == "" {
		return nil, ErrInvalidCredentials
	}

	return &Credentials{
		Username: username,
		Password: password,
	}, nil
}
