package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/phosphorco/legalnlp/internal/api"
	"github.com/phosphorco/legalnlp/internal/lnlp/cache"
	"github.com/phosphorco/legalnlp/internal/telemetry"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	provider, shutdown, err := telemetry.Init(ctx, "legalnlp", serveDebugMetrics)
	if err != nil {
		return err
	}
	defer shutdown(ctx)

	dir := serveCacheDir
	if dir == "" {
		dir = cfg.CacheDir
	}
	var c *cache.Cache
	if dir != "" {
		c, err = cache.Open(dir)
	} else {
		c, err = cache.OpenInMemory()
	}
	if err != nil {
		return err
	}
	defer c.Close()

	var metricsHandler http.Handler
	if serveMetrics {
		metricsHandler = provider.MetricsHandler
	}

	srv := api.NewServer(analyze, c, logger, metricsHandler)

	addr := serveAddr
	if addr == "" {
		addr = cfg.ServeAddr
	}
	logger.Info("starting server", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
