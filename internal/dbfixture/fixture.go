// Package dbfixture provisions the PostgreSQL instance integration tests run
// against: a throwaway container, or a server somebody already started.
package dbfixture

import (
	"context"
	"errors"
)

// EnvTestDBURL names a pre-provisioned database; when set no container is
// started.
const EnvTestDBURL = "XIDLAB_TEST_DB_URL"

var ErrNotStarted = errors.New("fixture_not_started")

// Fixture is a database instance for the lifetime of a test run.
type Fixture interface {
	Start(ctx context.Context) error
	// ConnString is valid between Start and Stop.
	ConnString() string
	Stop(ctx context.Context) error
}

// FromEnv picks External when EnvTestDBURL is set, otherwise Container with
// default settings.
func FromEnv(getenv func(string) string) Fixture {
	if url := getenv(EnvTestDBURL); url != "" {
		return NewExternal(url)
	}
	return NewContainer(ContainerOptions{})
}

// External is a server provisioned outside the test process.
type External struct {
	url string
}

func NewExternal(url string) *External { return &External{url: url} }

func (e *External) Start(context.Context) error {
	if e.url == "" {
		return errors.New("external fixture: empty DB URL")
	}
	return nil
}

func (e *External) ConnString() string { return e.url }

// Stop leaves the server running; it is not ours.
func (e *External) Stop(context.Context) error { return nil }
