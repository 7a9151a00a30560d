package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/Ishan-Karpe/ShelfSense/internal/api"
	"github.com/Ishan-Karpe/ShelfSense/internal/config"
	"github.com/Ishan-Karpe/ShelfSense/internal/logger"
	"github.com/Ishan-Karpe/ShelfSense/internal/remote"
	"github.com/Ishan-Karpe/ShelfSense/internal/shelfscan"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	admin := do.MustInvoke[*remote.AdminClient](i)
	scanner := do.MustInvoke[*shelfscan.Scanner](i)

	handler := api.NewServer(admin, scanner, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
