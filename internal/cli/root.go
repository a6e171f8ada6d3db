// Package cli wires the docmeta command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/docmeta/internal/async"
	"github.com/joseph-ayodele/docmeta/internal/common"
	"github.com/joseph-ayodele/docmeta/internal/extract"
	"github.com/joseph-ayodele/docmeta/internal/integrity"
	"github.com/joseph-ayodele/docmeta/internal/metrics"
	"github.com/joseph-ayodele/docmeta/internal/repository"
	"github.com/joseph-ayodele/docmeta/internal/services/catalog"
)

// Execute is the entry point for the CLI.
func Execute() {
	if err := Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Run executes one command line and releases the database and worker afterwards.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a, root := newRootCmd()
	defer a.teardown()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app holds what the commands share; the database is opened on first use.
type app struct {
	cfgFile string

	cfg     *common.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	worker  *async.Worker
	db      *repository.DB
	svc     *catalog.Service
}

// newRootCmd wires the cobra tree.
func newRootCmd() (*app, *cobra.Command) {
	a := &app{}
	root := &cobra.Command{
		Use:           "docmeta",
		Short:         "Extract, fingerprint and catalog document metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", os.Getenv("DOCMETA_CONFIG"), "Path to a YAML config file")

	root.AddCommand(
		newExtractCmd(a),
		newSaveCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newVerifyCmd(a),
		newScanCmd(a),
		newWatchCmd(a),
		newExportCmd(a),
	)
	return a, root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := common.LoadConfigFile(a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = common.NewLogger(cfg.Log, cmd.ErrOrStderr())
	a.metrics = metrics.NewMetrics()

	dispatcher := extract.NewDispatcher(
		extract.Config{PreviewChars: cfg.Extract.PreviewChars},
		a.logger,
		extract.WithObserver(a.metrics),
	)
	a.worker = async.NewWorker(dispatcher, a.logger)
	return nil
}

// service opens the database and builds the catalog service on first use.
func (a *app) service(ctx context.Context) (*catalog.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	dbc := a.cfg.Database
	db, err := repository.Open(ctx, repository.Config{
		Path:            dbc.Path,
		DSN:             dbc.DSN,
		MaxConns:        dbc.MaxConns,
		MaxConnLifetime: dbc.MaxConnLifetime,
		DialTimeout:     dbc.DialTimeout,
	}, a.logger)
	if err != nil {
		return nil, common.DatabaseError("open database", err)
	}
	repo := repository.NewRecordRepository(db, a.logger)
	if err := repo.Init(ctx); err != nil {
		repository.Close(db, a.logger)
		return nil, err
	}
	verifier, err := integrity.NewVerifier(a.logger)
	if err != nil {
		repository.Close(db, a.logger)
		return nil, err
	}
	a.db = db
	a.svc = catalog.NewService(a.worker, repo, verifier, a.logger, catalog.WithRecorder(a.metrics))
	return a.svc, nil
}

func (a *app) teardown() {
	if a.worker != nil {
		a.worker.Shutdown(context.Background())
		a.worker = nil
	}
	if a.db != nil {
		repository.Close(a.db, a.logger)
		a.db, a.svc = nil, nil
	}
}
