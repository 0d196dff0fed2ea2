// ABOUTME: CLI command for running the HTTP API.
// ABOUTME: Opens the session backend and shuts down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/fitlog/internal/httpapi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr          string
	serveSecureCookies bool
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 120 * time.Second
)

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the fitlog HTTP API.

Sessions are kept in the backend named by sessions.backend in the config:
badger (default, on disk under the data dir), memory, jwt (needs
sessions.secret) or redis (sessions.redis_addr).

Prometheus metrics are served at /metrics and a health check at /healthz.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ttl, err := cfg.SessionTTL()
		if err != nil {
			return err
		}
		sessions, err := cfg.OpenSessions(ctx, logger)
		if err != nil {
			return fmt.Errorf("failed to open sessions: %w", err)
		}
		defer sessions.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.GetAddr()
		}

		srv := newHTTPServer(addr, httpapi.NewServer(httpapi.Options{
			Tracker:       tr,
			Sessions:      sessions,
			Log:           logger,
			Metrics:       mtr,
			SecureCookies: serveSecureCookies,
			SessionTTL:    ttl,
		}))

		errCh := make(chan error, 1)
		go func() {
			logger.WithFields(logrus.Fields{
				"addr":     addr,
				"sessions": cfg.GetSessionBackend(),
				"store":    tr.Available(),
			}).Info("listening")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveSecureCookies, "secure-cookies", false, "mark session cookies Secure (behind TLS)")
	rootCmd.AddCommand(serveCmd)
}
