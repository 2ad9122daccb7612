package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/poofware/optimistic-lock-lab/internal/config"
	"github.com/poofware/optimistic-lock-lab/internal/repositories"
	"github.com/poofware/optimistic-lock-lab/internal/services"
	"github.com/poofware/optimistic-lock-lab/internal/utils"
	"github.com/poofware/optimistic-lock-lab/xid"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config          *config.Config
	DB              *pgxpool.Pool
	RecordRepo      repositories.RecordRepository
	ScenarioService services.ScenarioService
}

func NewApp(cfg *config.Config) (*App, error) {
	utils.Logger.Infof("Initializing %s App", cfg.AppName)

	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = NewDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("%s connected to DB on attempt %d", cfg.AppName, i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := EnsureSchema(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, err
	}

	recordRepo := repositories.NewRecordRepositoryWithRetries(dbPool, cfg.DBMaxRetries)

	return &App{
		Config:          cfg,
		DB:              dbPool,
		RecordRepo:      recordRepo,
		ScenarioService: services.NewScenarioService(recordRepo),
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Infof("%s DB connection closed.", a.Config.AppName)
	}
}

// NewDBPool opens a pool whose connections all carry the xid codec.
func NewDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.AfterConnect = RegisterTypes
	return pgxpool.ConnectConfig(ctx, cfg)
}

// RegisterTypes is a pgxpool AfterConnect hook.
func RegisterTypes(_ context.Context, conn *pgx.Conn) error {
	xid.Register(conn.ConnInfo())
	return nil
}

func EnsureSchema(ctx context.Context, db repositories.DB) error {
	if _, err := db.Exec(ctx, repositories.RecordsTableDDL); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}
