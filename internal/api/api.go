// Package api mounts the domain handlers as the service's /api module
// and owns background maintenance.
package api

import (
	"log/slog"
	"net/http"

	"github.com/docrelay/docrelay/internal/config"
	"github.com/docrelay/docrelay/internal/shares"
	"github.com/docrelay/docrelay/internal/transform"
	"github.com/docrelay/docrelay/pkg/middleware"
	"github.com/docrelay/docrelay/pkg/module"
	"github.com/docrelay/docrelay/pkg/routes"
)

// API is the /api module: transform and share endpoints behind the
// module's middleware stack.
type API struct {
	module *module.Module
}

// New assembles the API module from the domain systems.
func New(domain *Domain, cfg *config.Config, logger *slog.Logger) *API {
	maxUpload := cfg.API.MaxUploadBytes()

	transformHandler := transform.NewHandler(
		domain.Transforms,
		maxUpload,
		logger.With("handler", "transforms"),
	)
	shareHandler := shares.NewHandler(
		domain.Shares,
		maxUpload,
		cfg.Pagination,
		logger.With("handler", "shares"),
	)

	mux := http.NewServeMux()
	routes.Register(mux,
		transformHandler.Routes(),
		shareHandler.Routes(),
	)

	m := module.New("/api", mux)
	m.Use(middleware.Logger(logger.With("module", "api")))
	m.Use(middleware.CORS(&cfg.CORS))

	return &API{module: m}
}

// Module returns the mountable /api module.
func (a *API) Module() *module.Module {
	return a.module
}
