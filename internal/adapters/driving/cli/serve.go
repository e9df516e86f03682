package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/netassist/internal/adapters/driving/api"
	"github.com/custodia-labs/netassist/internal/adapters/driving/watch"
	"github.com/custodia-labs/netassist/internal/logger"
)

var (
	serveAddr     string
	serveNoUpdate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the question-answering API over HTTP.

Endpoints:
  POST /query        answer a question
  GET  /health       liveness and version
  GET  /collections  collection statistics
  GET  /metrics      Prometheus metrics

When updates are enabled the scheduler checks watched sources in the
background, and when ingest.watch_dir is set new JSON files there are
ingested as they arrive.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveNoUpdate, "no-updates", false, "do not run scheduled update checks")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errNotConfigured("assistant service")
	}
	if collectionService == nil {
		return errNotConfigured("collection service")
	}

	addr := serveAddr
	if addr == "" {
		addr = appConfig.Server.Addr
	}

	server, err := api.NewServer(&api.Ports{
		Assistant:   assistantService,
		Collections: collectionService,
		Metrics:     appMetrics,
		Version:     version,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if schedulerService != nil && appConfig.Updates.Enabled && !serveNoUpdate {
		if err := schedulerService.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() {
			if err := schedulerService.Stop(); err != nil {
				logger.Warn("serve: stop scheduler: %v", err)
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, addr)
	})

	if dir := appConfig.Ingest.WatchDir; dir != "" && ingestionService != nil {
		w := watch.New(dir, ingestionService)
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	cmd.Printf("netassist API listening on %s\n", addr)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
