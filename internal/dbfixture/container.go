package dbfixture

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/poofware/optimistic-lock-lab/internal/utils"
)

const (
	DefaultImage    = "postgres:16.2-bullseye"
	DefaultDatabase = "test"
	DefaultUser     = "test"
	DefaultPassword = "1234"

	startupTimeout = 60 * time.Second
)

type ContainerOptions struct {
	Image    string
	Database string
	User     string
	Password string
}

func (o ContainerOptions) withDefaults() ContainerOptions {
	if o.Image == "" {
		o.Image = DefaultImage
	}
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	if o.User == "" {
		o.User = DefaultUser
	}
	if o.Password == "" {
		o.Password = DefaultPassword
	}
	return o
}

// Container runs PostgreSQL in a disposable docker container.
type Container struct {
	opts    ContainerOptions
	ctr     *postgres.PostgresContainer
	connStr string
}

func NewContainer(opts ContainerOptions) *Container {
	return &Container{opts: opts.withDefaults()}
}

func (c *Container) Start(ctx context.Context) error {
	utils.Logger.Infof("Starting postgres container %s", c.opts.Image)

	ctr, err := postgres.Run(ctx, c.opts.Image,
		postgres.WithDatabase(c.opts.Database),
		postgres.WithUsername(c.opts.User),
		postgres.WithPassword(c.opts.Password),
		testcontainers.WithWaitStrategy(
			// postgres logs readiness twice: once for the init run, once for real
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		// the reaper removes a half-started container
		return fmt.Errorf("start postgres container: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return fmt.Errorf("postgres container connection string: %w", err)
	}

	c.ctr = ctr
	c.connStr = connStr
	utils.Logger.Infof("Postgres container ready at %s", utils.RedactURL(connStr))
	return nil
}

func (c *Container) ConnString() string { return c.connStr }

func (c *Container) Stop(ctx context.Context) error {
	if c.ctr == nil {
		return ErrNotStarted
	}
	err := c.ctr.Terminate(ctx)
	c.ctr = nil
	c.connStr = ""
	return err
}
