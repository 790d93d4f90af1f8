package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sboosali/notegraph/pkg/server"
	"github.com/sboosali/notegraph/pkg/session"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address; overrides [server] addr
	noCache bool   // bypass the draw-response cache
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the explorer over HTTP",
		Long: `Serve runs the HTTP API. Every client gets its own session, identified by
a cookie, with its own notes, graph and selection. Idle sessions expire
after [server] session_ttl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the draw cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	client, ch, err := c.newClient(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer ch.Close()

	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions := session.NewRegistry(ctx, session.Config{
		Client:       client,
		PruneAfter:   cfg.Index.PruneAfter,
		Distortion:   cfg.Fisheye.Distortion,
		Radius:       cfg.Fisheye.Radius,
		Width:        cfg.Canvas.Width,
		Height:       cfg.Canvas.Height,
		QueryOnClick: cfg.Backend.QueryOnClick,
		Logger:       c.Logger,
	}, cfg.Server.SessionTTL.Std())

	srv := server.New(server.Config{
		Addr:     orDefault(opts.addr, cfg.Server.Addr),
		Sessions: sessions,
		Store:    store,
		Logger:   c.Logger,
	})

	c.Logger.Info("parser backend", "draw", client.DrawURL(), "query", client.QueryURL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return sessions.Run(gctx, session.DefaultCleanupInterval) })
	return g.Wait()
}
