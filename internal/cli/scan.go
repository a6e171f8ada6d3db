package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/docmeta/internal/common"
	"github.com/joseph-ayodele/docmeta/internal/ingest"
)

func newScanCmd(a *app) *cobra.Command {
	var includeHidden bool
	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Extract and save every supported file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := common.WithSource(cmd.Context(), "scan")
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			results, stats, err := svc.Scan(ctx, args[0], !includeHidden)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				writeIngestion(out, r)
			}
			fmt.Fprintf(out, "scanned=%d matched=%d saved=%d duplicates=%d failed=%d\n",
				stats.Scanned, stats.Matched, stats.Succeeded, stats.Duplicates, stats.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Descend into hidden files and directories")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var metricsAddr string
	var initialScan bool
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Extract and save supported files as they appear or change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = metricsAddr
			}
			if cmd.Flags().Changed("initial-scan") {
				a.cfg.Watch.InitialScan = initialScan
			}
			ctx, stop := signal.NotifyContext(common.WithSource(cmd.Context(), "watch"), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd, args)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&initialScan, "initial-scan", false, "Process files already present before watching")
	return cmd
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, roots []string) error {
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	events, errs, err := ingest.StartWatcher(gctx, ingest.WatchConfig{
		Roots:       roots,
		InitialScan: a.cfg.Watch.InitialScan,
		Debounce:    a.cfg.Watch.Debounce,
		SkipHidden:  a.cfg.Watch.SkipHidden,
	}, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("watching for documents", "roots", roots, "debounce", a.cfg.Watch.Debounce)

	out := cmd.OutOrStdout()
	g.Go(func() error {
		for path := range events {
			r, err := svc.IngestPath(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				// storage failures end the watch; the caller exits non-zero
				return err
			}
			writeIngestion(out, r)
		}
		return nil
	})
	g.Go(func() error {
		for err := range errs {
			a.logger.Warn("watch error", "error", err)
		}
		return nil
	})

	if addr := a.cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			a.logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	a.logger.Info("watch stopped")
	return err
}
