package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight requests may take after an
// interrupt.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which exposes one analysis over a
// read-only HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [csv]",
		Short: "Serve the ranking over a read-only HTTP API",
		Long: `Serve runs the analysis once and serves the result until interrupted.

Endpoints:
  GET /healthz
  GET /api/summary
  GET /api/levels
  GET /api/levels/{level}?limit=N
  GET /api/movers?limit=N
  GET /api/trend?entity=NAME
  GET /api/results
  GET /report.md

The listen address defaults to :$PORT when PORT is set, else :8080.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			res, err := c.analyze(ctx, inputArg(args), cfg)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", listenAddr(addr))
			if err != nil {
				return err
			}
			printInfo(c.Out, "Serving %d countries on %s", len(res.Labels), StyleLink.Render("http://"+ln.Addr().String()))
			return serve(ctx, ln, newRouter(res, c.Logger))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT or :8080)")
	return cmd
}

// listenAddr resolves the listen address from the flag and $PORT.
func listenAddr(flag string) string {
	if flag != "" {
		return flag
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":8080"
}

// serve handles requests on ln until ctx is done, then shuts down gracefully.
// A cancelled context is a normal stop and returns nil.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
