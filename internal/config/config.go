package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/poofware/optimistic-lock-lab/internal/repositories"
	"github.com/poofware/optimistic-lock-lab/internal/utils"
)

type Config struct {
	AppName         string
	DBUrl           string
	DBMaxRetries    int
	UniqueRunNumber string
	UniqueRunnerID  string
	UsingIsolatedDB bool
}

// build-time overrides, set with -ldflags
var (
	AppName         = "xidlab"
	UniqueRunNumber string
	UniqueRunnerID  string
)

// LoadConfig reads the environment and dies on bad input.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)

	cfg, err := Load(os.Getenv)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	utils.Logger.Infof("Loaded config for %s (db=%s, isolated=%t)", cfg.AppName, utils.RedactURL(cfg.DBUrl), cfg.UsingIsolatedDB)
	return cfg
}

// Load is LoadConfig without the fatal, for callers that own the error.
func Load(getenv func(string) string) (*Config, error) {
	if AppName == "" {
		return nil, fmt.Errorf("AppName was not provided via ldflags")
	}

	dbURL := getenv("DB_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL env var is missing")
	}

	maxRetries := repositories.DefaultMaxRetries
	if raw := getenv("DB_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("DB_MAX_RETRIES must be a positive integer, got %q", raw)
		}
		maxRetries = n
	}

	cfg := &Config{
		AppName:         AppName,
		DBUrl:           dbURL,
		DBMaxRetries:    maxRetries,
		UniqueRunNumber: UniqueRunNumber,
		UniqueRunnerID:  UniqueRunnerID,
	}

	if UniqueRunnerID != "" && UniqueRunNumber != "" {
		isolated, err := utils.WithIsolatedRole(dbURL, UniqueRunnerID, UniqueRunNumber)
		if err != nil {
			return nil, err
		}
		cfg.DBUrl = isolated
		cfg.UsingIsolatedDB = true
	}

	return cfg, nil
}
