package backend

import (
	"fmt"
	"strings"

	"costbook/internal/config"
	"costbook/internal/rates"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	policy, err := rates.ParsePolicy(appConfig.RatesRefreshPolicy)
	if err != nil {
		return Config{}, err
	}

	return Config{
		DBDir:     appConfig.DBDir,
		DBName:    appConfig.DBName,
		DBVersion: appConfig.DBVersion,

		RatesURL:             appConfig.RatesURL,
		RatesPolicy:          policy,
		RatesRefreshInterval: appConfig.RatesRefreshInterval,
		RatesFetchTimeout:    appConfig.RatesFetchTimeout,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBName) == "" {
		return fmt.Errorf("database name is required")
	}
	if c.DBVersion < 1 {
		return fmt.Errorf("database version must be at least 1, got %d", c.DBVersion)
	}
	if _, err := rates.ParsePolicy(string(c.RatesPolicy)); err != nil {
		return err
	}
	if err := rates.ValidateSourceURL(c.RatesURL); err != nil {
		return fmt.Errorf("rates URL: %w", err)
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}
