package cli

import (
	"cmp"
	"context"

	"github.com/spf13/cobra"

	"github.com/leafstorm/railgen/internal/server"
	"github.com/leafstorm/railgen/pkg/cache"
	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/pipeline"
)

// serveOpts holds the flags of the serve command. Empty values fall back
// to the config file.
type serveOpts struct {
	addr     string
	redisURL string
}

// serveCommand serves a network over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve DATA",
		Short: "Serve a network over HTTP",
		Long: `Serve the network's stations and lines as JSON and its rendered artifacts
under /render. Artifacts are cached in memory, or in Redis when a Redis URL is
configured so several servers share one cache.`,
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "cache artifacts in Redis, e.g. redis://localhost:6379/0")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, data string, opts serveOpts) error {
	l, err := c.load(ctx, data, false)
	if err != nil {
		return err
	}

	artifacts, keyer, err := c.serverCache(ctx, l.net, cmp.Or(opts.redisURL, c.Config.Cache.RedisURL))
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(artifacts, keyer, c.Logger)
	if ttl := c.Config.Cache.TTL.Std(); ttl > 0 {
		runner.TTL = ttl
	}
	defer runner.Close()

	addr := cmp.Or(opts.addr, c.Config.Server.Addr)
	srv := server.New(l.net, l.digest, runner, server.Options{
		CORSOrigins: c.Config.Server.CORSOrigins,
		Stylesheet:  c.Config.Render.Stylesheet,
		Logger:      c.Logger,
	})
	c.ui.success("Serving %s", StyleHighlight.Render(l.net.Name()))
	c.ui.keyValue("address", "http://"+addr)
	c.ui.stats(l.net.StationCount(), l.net.LineCount(), l.net.WaypointCount(), l.cached)
	return srv.ListenAndServe(ctx, addr)
}

// serverCache picks Redis when a URL is given, else an in-process LRU.
// Redis keys are scoped by network so servers for different networks can
// share a database.
func (c *CLI) serverCache(ctx context.Context, net *network.Network, redisURL string) (cache.Cache, cache.Keyer, error) {
	if redisURL == "" {
		return cache.NewMemoryCache(c.Config.Cache.MemoryEntries), nil, nil
	}
	rc, err := cache.NewRedisCache(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("artifact cache", "backend", "redis")
	return rc, cache.NewScopedKeyer(nil, network.Slugify(net.Name())+":"), nil
}
