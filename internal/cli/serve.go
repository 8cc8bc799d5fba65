package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/LawrenceVelilla/UCourseMap-sub000/internal/api"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prerequisite API over HTTP",
		Long: `Serve the prerequisite API over HTTP.

Endpoints:
  GET  /api/courses/{code}
  GET  /api/courses/{code}/closure?depth=&coreqs=
  GET  /api/courses/{code}/ast?mode=full|shallow
  GET  /api/courses/{code}/graph?mode=full|shallow|closure&format=json|dot|svg
  POST /api/courses/{code}/check   {"completed": [...]}
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	b, err := c.openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer b.Close()

	defaults, err := b.defaults()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = b.cfg.Server.Addr
	}
	logger := c.logger(ctx)

	srv := &http.Server{
		Addr: addr,
		Handler: api.NewServer(b.runner, api.Config{
			Defaults:       defaults,
			RequestTimeout: b.cfg.Server.RequestTimeout,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "catalog", b.cfg.Catalog.Backend, "cache", b.cfg.Cache.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
