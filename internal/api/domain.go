package api

import (
	"log/slog"

	"github.com/docrelay/docrelay/internal/config"
	"github.com/docrelay/docrelay/internal/infrastructure"
	"github.com/docrelay/docrelay/internal/shares"
	"github.com/docrelay/docrelay/internal/transform"
)

// Domain holds the service's domain systems.
type Domain struct {
	Transforms transform.System
	Shares     shares.System
}

// NewDomain builds the domain systems on top of the shared infrastructure.
func NewDomain(infra *infrastructure.Infrastructure, cfg *config.Config, logger *slog.Logger) *Domain {
	return &Domain{
		Transforms: transform.New(logger.With("system", "transform")),
		Shares: shares.New(
			infra.Database.DB(),
			infra.Storage,
			logger.With("system", "shares"),
			cfg.Pagination,
		),
	}
}
