package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/pkg/api"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP API over the configured store.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mind-map HTTP API",
		Long: `Serve the mind-map HTTP API over the configured store.

Documents live under ` + api.BasePath + ` and every graph edit goes through
the same rules as the command line. Rendered SVGs are cached in the
configured cache. Stop the server with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if addr == "" {
				addr = cfg.Server.Addr
			}
			ctx := cmd.Context()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			renders := c.openCache(ctx, "renders")
			defer renders.Close()

			srv := api.New(st,
				api.WithLogger(c.Logger),
				api.WithEngine(cfg.Engine()),
				api.WithRenderCache(renders, cfg.CacheKeyer(), cfg.Cache.TTL.Duration),
				api.WithCORSOrigins(cfg.Server.CORSOrigins...),
			)
			return c.serve(ctx, addr, srv.Router())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	return cmd
}

// serve listens on addr until ctx ends, then shuts the server down.
func (c *CLI) serve(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	printSuccess("Listening on %s", StyleHighlight.Render("http://"+ln.Addr().String()))
	c.Logger.Info("server started", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
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
