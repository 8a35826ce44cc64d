package config

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"redactproxy/internal/core/appconfig"
)

// NewClient builds the configuration client for the configured location
func NewClient(ctx context.Context, s AppConfigSettings) (appconfig.Client, error) {
	switch strings.ToLower(s.Location) {
	case LocationAppConfig:
		client, err := appconfig.NewDefaultAWSClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create AppConfig client: %w", err)
		}
		return client, nil
	case LocationFile:
		return appconfig.NewFileClient(s.File), nil
	default:
		return nil, fmt.Errorf("unsupported appconfig.location %q", s.Location)
	}
}

// Loader returns validated application configuration, cached by a Fetcher
type Loader struct {
	fetcher *appconfig.Fetcher[*ApplicationConfig]
	log     *zap.Logger
}

// NewLoader creates a Loader polling client for the configured profile
func NewLoader(client appconfig.Client, s AppConfigSettings, log *zap.Logger, opts ...appconfig.Option) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]appconfig.Option{
		appconfig.WithPollInterval(s.PollInterval),
		appconfig.WithPollTimeout(s.PollTimeout),
	}, opts...)

	return &Loader{
		fetcher: appconfig.NewFetcher[*ApplicationConfig](client, s.Application, s.Environment, s.Profile, opts...),
		log:     log.Named("config"),
	}
}

// Load fetches the current snapshot and validates it
func (l *Loader) Load(ctx context.Context) (*ApplicationConfig, error) {
	l.log.Debug("Fetching application configuration")

	cfg, err := l.fetcher.Fetch(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
