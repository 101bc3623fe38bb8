// Package app wires configuration into the transformation stack shared by
// the web server and the bot.
package app

import (
	"log/slog"

	"professional-persona-ai/internal/config"
	"professional-persona-ai/internal/gemini"
	"professional-persona-ai/internal/httpclient"
	"professional-persona-ai/internal/session"
	"professional-persona-ai/internal/studio"
	"professional-persona-ai/internal/transform"
)

// NewStudio builds the session store and transformation client for cfg.
// The API key is looked up from cfg.CredentialEnv on every call.
func NewStudio(cfg config.Config, logger *slog.Logger) *studio.Service {
	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
		Logger:     logger,
	})

	gemOpts := gemini.Options{
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	factory := transform.RESTFactory(gemOpts)
	if cfg.GeminiBackend == config.BackendSDK {
		factory = transform.SDKFactory(gemOpts)
	}

	client := transform.New(transform.Options{
		Model:           cfg.GeminiModel,
		CredentialNames: cfg.CredentialEnv,
		Factory:         factory,
		Logger:          logger,
	})

	logger.Info("transformation backend ready",
		"backend", cfg.GeminiBackend,
		"model", cfg.GeminiModel,
		"credential_env", cfg.CredentialEnv,
	)

	return studio.New(studio.Options{
		Sessions:    session.NewStore(session.Options{}),
		Transformer: client,
		Logger:      logger,
	})
}
