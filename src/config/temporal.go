package config

import (
	"crypto/tls"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
)

// TemporalClientOptions builds client.Options for either a local server or
// Temporal Cloud. An API key switches on TLS and API key credentials.
// Identity can be set by the caller afterwards.
func TemporalClientOptions(cfg TemporalConfig, logger tlog.Logger) client.Options {
	slog.Info("Temporal client config",
		"host_port", cfg.HostPort,
		"namespace", cfg.Namespace,
		"has_api_key", cfg.APIKey != "",
	)

	clientOptions := client.Options{
		HostPort: cfg.HostPort,
		Logger:   logger,
	}

	if cfg.Namespace != "" {
		clientOptions.Namespace = cfg.Namespace
	}

	if cfg.APIKey != "" {
		clientOptions.ConnectionOptions = client.ConnectionOptions{
			TLS: &tls.Config{},
		}
		clientOptions.Credentials = client.NewAPIKeyStaticCredentials(cfg.APIKey)
	}

	return clientOptions
}
