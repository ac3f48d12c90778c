package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Header names carrying the frame loop counters on /health responses.
const (
	headerFrames     = "X-Tickgrid-Frames"
	headerFixedSteps = "X-Tickgrid-Fixed-Steps"
	headerInvoked    = "X-Tickgrid-Invoked"
)

// healthHandler reports liveness plus the frame loop counters. It only reads
// atomics, so it never touches the registry from the server goroutine.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	stats := a.loop.Stats()
	w.Header().Set(headerFrames, strconv.FormatUint(stats.Frames, 10))
	w.Header().Set(headerFixedSteps, strconv.FormatUint(stats.FixedSteps, 10))
	w.Header().Set(headerInvoked, strconv.FormatUint(stats.Invoked, 10))
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startHealthcheckServer binds the port synchronously, so a busy port fails
// startup, then serves in the background.
func (a *App) startHealthcheckServer(port int) error {
	a.logger.Debug("Configuring health check server.")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start health check server: %w", err)
	}
	a.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("Health check server starting.", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly.", "error", err)
		}
	}()
	return nil
}

func (a *App) closeHealthcheckServer(ctx context.Context) {
	if a.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	a.logger.Debug("Shutting down health check server.")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed.", "error", err)
	}
}
