package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcdev12/icetime/go/internal/dbconfig"
)

type Config struct {
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	Port            string `env:"PORT" envDefault:"8080"`
	JWTSecret       string `env:"JWT_SECRET,required"`
	DisplayTimezone string `env:"DISPLAY_TIMEZONE" envDefault:"America/New_York"`
	Store           dbconfig.StoreConfig
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Store.Driver != dbconfig.DriverPostgres && cfg.Store.Driver != dbconfig.DriverSQLite {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}
	return &cfg, nil
}

// displayLocation is the zone start times are rendered in for notifications
func (c *Config) displayLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load DISPLAY_TIMEZONE: %w", err)
	}
	return loc, nil
}
