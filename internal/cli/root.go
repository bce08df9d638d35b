package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/config"
	"github.com/David-Botos/food-inspections/pkg/connector"
	"github.com/David-Botos/food-inspections/pkg/model"
	"github.com/David-Botos/food-inspections/pkg/session"
	"github.com/David-Botos/food-inspections/pkg/store"
)

// RootOptions holds global flags and the state PersistentPreRunE builds from them.
type RootOptions struct {
	ConfigPath  string
	StoreDriver string
	StoreDSN    string
	Verbose     bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand creates the root command for the inspections CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inspections",
		Short: "Clean and summarise food inspection datasets",
		Long: `Reconcile food-facility inspections, violations and inventory.

Datasets are ingested into a collection store, cleaned together (inactive
facilities removed everywhere, violations joined to their inspections, seat
ranges split out of program descriptions) and summarised by seating or zip code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file (default $INSPECTIONS_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.StoreDriver, "store-driver", "", "collection store driver (sqlite3|pgx)")
	cmd.PersistentFlags().StringVar(&opts.StoreDSN, "store-dsn", "", "collection store DSN")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewIngestTableCommand(opts))
	cmd.AddCommand(NewCleanCommand(opts))
	cmd.AddCommand(NewAggregateCommand(opts))
	cmd.AddCommand(NewViolationsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewCollectionsCommand(opts))

	return cmd
}

func (o *RootOptions) setup() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.StoreDriver != "" {
		cfg.Store.Driver = o.StoreDriver
	}
	if o.StoreDSN != "" {
		cfg.Store.DSN = o.StoreDSN
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	zap.ReplaceGlobals(logger)

	o.cfg = cfg
	o.logger = logger
	return nil
}

// openStore connects to the collection store. The pgx driver without a DSN
// reuses the PostgreSQL connector's pool.
func (o *RootOptions) openStore(ctx context.Context) (*store.Store, error) {
	if o.cfg.Store.Driver == "pgx" && o.cfg.Store.DSN == "" {
		conn, err := connector.NewConnectorFactory(o.cfg, o.logger).CreatePostgresConnector(ctx)
		if err != nil {
			return nil, WrapExitError(ExitFailure, "failed to open store", err)
		}
		if err := conn.ValidateWritable(ctx); err != nil {
			conn.Close()
			return nil, WrapExitError(ExitFailure, "failed to open store", err)
		}
		st, err := store.New(ctx, sqlx.NewDb(conn.DB(), "pgx"), o.logger)
		if err != nil {
			conn.Close()
			return nil, WrapExitError(ExitFailure, "failed to open store", err)
		}
		return st, nil
	}

	st, err := store.Open(ctx, o.cfg.Store.Driver, o.cfg.Store.DSN, o.logger)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open store", err)
	}
	return st, nil
}

func (o *RootOptions) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		o.logger.Error("Error closing store", zap.Error(err))
	}
}

// loadSession reads the three stored collections
func loadSession(ctx context.Context, st *store.Store) (*session.Session, error) {
	sess, err := session.Load(ctx, st)
	if errors.Is(err, store.ErrCollectionNotFound) {
		return nil, WrapExitError(ExitCommandError, "run ingest first", err)
	}
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to load collections", err)
	}
	return sess, nil
}

// dataErr maps domain errors from the pipeline or aggregator to exit codes
func dataErr(message string, err error) error {
	var (
		missing *model.MissingColumnError
		date    *model.DateParseError
		shape   *model.InvalidShapeError
	)
	if errors.As(err, &missing) || errors.As(err, &date) || errors.As(err, &shape) {
		return WrapExitError(ExitMalformed, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
