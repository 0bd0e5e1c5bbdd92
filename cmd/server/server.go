package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/docrelay/docrelay/internal/api"
	"github.com/docrelay/docrelay/internal/config"
	"github.com/docrelay/docrelay/internal/infrastructure"
	"github.com/docrelay/docrelay/pkg/handlers"
	"github.com/docrelay/docrelay/pkg/lifecycle"
	"github.com/docrelay/docrelay/pkg/module"
)

// Server wraps the HTTP server and binds it to the lifecycle coordinator.
type Server struct {
	httpServer  *http.Server
	coordinator *lifecycle.Coordinator
	logger      *slog.Logger
}

func newServer(cfg *config.Config, coordinator *lifecycle.Coordinator, infra *infrastructure.Infrastructure, service *api.API, logger *slog.Logger) *Server {
	router := module.NewRouter()
	router.Mount(service.Module())

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !coordinator.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := infra.Database.Ping(ctx); err != nil {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unreachable"})
			return
		}

		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	read, write, idle, _ := cfg.Server.Durations()

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  read,
			WriteTimeout: write,
			IdleTimeout:  idle,
		},
		coordinator: coordinator,
		logger:      logger,
	}
}

// Start launches the HTTP listener and registers graceful shutdown.
func (s *Server) Start() {
	s.coordinator.OnStartup(func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	})

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()

	s.coordinator.OnShutdown(func() {
		<-s.coordinator.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("http server shutdown", "error", err)
		}
	})
}
