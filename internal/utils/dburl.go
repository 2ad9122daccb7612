package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// IsolatedRoleName is the role a run connects as when isolation is on.
func IsolatedRoleName(runnerID, runNumber string) string {
	return strings.ToLower(runnerID + "-" + runNumber)
}

func WithIsolatedRole(baseURL, runnerID, runNumber string) (string, error) {
	if runnerID == "" || runNumber == "" {
		return "", fmt.Errorf("runnerID and runNumber must be non-empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DB URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid DB URL: unsupported scheme %q", u.Scheme)
	}

	// Preserve the existing password (if any) but swap the user.
	password, _ := u.User.Password()
	u.User = url.UserPassword(IsolatedRoleName(runnerID, runNumber), password)

	return u.String(), nil
}

// RedactURL hides the password so a DB URL can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable DB URL>"
	}
	return u.Redacted()
}
