// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/config"
	"github.com/David-Botos/food-inspections/pkg/model"
)

// SnowflakeConnector reads raw datasets from Snowflake
type SnowflakeConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sfConfig := &sf.Config{
		Account:       cfg.Account,
		User:          cfg.User,
		Password:      cfg.Password,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Authenticator: cfg.AuthType(),
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.String("warehouse", cfg.Warehouse))

	dsn, err := sf.DSN(sfConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.Database, db)
	return &SnowflakeConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the session landed in the configured database and schema
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var role, database, schema, warehouse sql.NullString
	err := c.db.QueryRowContext(ctx,
		"SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_SCHEMA(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &schema, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role.String),
		zap.String("database", database.String),
		zap.String("schema", schema.String),
		zap.String("warehouse", warehouse.String))

	if !strings.EqualFold(database.String, c.cfg.Database) {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database.String, c.cfg.Database)
	}
	if !strings.EqualFold(schema.String, c.cfg.Schema) {
		return fmt.Errorf("schema %s not found in %s", c.cfg.Schema, c.cfg.Database)
	}
	return nil
}

// ReadTable reads a raw dataset from a Snowflake table in pages of the configured batch size.
// Unquoted Snowflake identifiers are upper case, so the name is upper-cased before quoting.
func (c *SnowflakeConnector) ReadTable(ctx context.Context, table string) (*model.Table, error) {
	start := time.Now()
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY 1", QuoteTableName(strings.ToUpper(table)))

	var (
		scanner *rowScanner
		rows    []model.Row
	)
	err := c.BatchQuery(ctx, query, c.cfg.BatchSize, func(r *sql.Rows) error {
		if scanner == nil {
			s, err := newRowScanner(r)
			if err != nil {
				return err
			}
			scanner = s
		}
		row, err := scanner.scan(r)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	var columns []string
	if scanner != nil {
		columns = scanner.columns
	}
	t := model.NewTable(strings.ToLower(baseName(table)), columns, rows...)

	c.logger.Info("Read table",
		zap.String("table", table),
		zap.Int("rows", t.Len()),
		zap.Duration("duration", time.Since(start)))
	return t, nil
}

// BatchQuery fetches data in LIMIT/OFFSET pages to handle large result sets
func (c *SnowflakeConnector) BatchQuery(
	ctx context.Context,
	query string,
	batchSize int,
	processor func(*sql.Rows) error,
) error {
	if batchSize <= 0 {
		batchSize = 10000
	}

	offset := 0
	for {
		n, err := c.queryPage(ctx, fmt.Sprintf("%s LIMIT %d OFFSET %d", query, batchSize, offset), processor)
		if err != nil {
			return fmt.Errorf("batch query failed at offset %d: %w", offset, err)
		}

		// If fewer rows than batch size were returned, we're done
		if n < batchSize {
			return nil
		}
		offset += batchSize
	}
}

func (c *SnowflakeConnector) queryPage(ctx context.Context, query string, processor func(*sql.Rows) error) (int, error) {
	if c.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.QueryTimeout)
		defer cancel()
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
		if err := processor(rows); err != nil {
			return n, err
		}
	}
	return n, rows.Err()
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}
