package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/poofware/optimistic-lock-lab/internal/app"
	"github.com/poofware/optimistic-lock-lab/internal/config"
	"github.com/poofware/optimistic-lock-lab/internal/services"
	"github.com/poofware/optimistic-lock-lab/internal/utils"
)

var (
	scenario string
	workers  int
	dbURL    string
)

func init() {
	flag.StringVar(&scenario, "scenario", "all",
		`Scenario to run: stale-guard, fresh-guard, contention or all`)
	flag.IntVar(&workers, "workers", 3,
		`Concurrent writers for the contention scenario`)
	flag.StringVar(&dbURL, "db-url", "",
		`PostgreSQL URL; overrides DB_URL`)
}

type verifier interface{ Verify() error }

func main() {
	flag.Parse()
	utils.InitLogger(config.AppName)

	if dbURL != "" {
		if err := os.Setenv("DB_URL", dbURL); err != nil {
			utils.Logger.WithError(err).Fatal("Set DB_URL")
		}
	}

	// 1) Config
	cfg := config.LoadConfig()

	// 2) Core application (DB pool, repositories, services)
	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize app")
	}
	defer application.Close()

	// 3) Scenarios
	if err := run(context.Background(), application.ScenarioService, scenario); err != nil {
		utils.Logger.WithError(err).Error("Scenario run failed")
		application.Close()
		os.Exit(1)
	}
	utils.Logger.Info("All scenarios passed")
}

func run(ctx context.Context, svc services.ScenarioService, which string) error {
	steps := map[string]func() (verifier, error){
		services.ScenarioStaleGuard: func() (verifier, error) { return svc.StaleGuard(ctx) },
		services.ScenarioFreshGuard: func() (verifier, error) { return svc.FreshGuard(ctx) },
		services.ScenarioContention: func() (verifier, error) {
			res, err := svc.Contention(ctx, workers)
			if err == nil {
				utils.Logger.Infof("contention: workers=%d succeeded=%d mutate_calls=%d final=%q",
					res.Workers, res.Succeeded, res.MutateCalls, res.FinalValue)
			}
			return res, err
		},
	}

	order := []string{services.ScenarioStaleGuard, services.ScenarioFreshGuard, services.ScenarioContention}
	if which != "all" {
		if _, ok := steps[which]; !ok {
			return fmt.Errorf("unknown scenario %q", which)
		}
		order = []string{which}
	}

	for _, name := range order {
		res, err := steps[name]()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := res.Verify(); err != nil {
			return err
		}
	}
	return nil
}
