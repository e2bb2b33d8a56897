package server

import (
	"github.com/raysh454/miru/internal/app"
	"github.com/raysh454/miru/internal/logging"
)

// Config carries the settings of the API server.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// AppConfig configures the orchestrator the server runs audits on.
	// Nil selects app.DefaultConfig.
	AppConfig *app.Config

	// Logger receives request and handler logs. Nil selects a stdout
	// logger.
	Logger logging.Logger
}
