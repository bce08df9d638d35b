// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/config"
)

// Source names accepted by CreateSource
const (
	SourcePostgres  = "postgres"
	SourceSnowflake = "snowflake"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSnowflakeConnector creates a new Snowflake connector
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	f.logger.Info("Creating Snowflake connector")

	connector, err := NewSnowflakeConnector(ctx, &f.cfg.Snowflake)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}
	return connector, nil
}

// CreatePostgresConnector creates a new PostgreSQL connector
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	f.logger.Info("Creating PostgreSQL connector")

	connector, err := NewPostgresConnector(ctx, &f.cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}
	return connector, nil
}

// CreateSource creates the connector a raw dataset is read from, by source name
func (f *ConnectorFactory) CreateSource(ctx context.Context, source string) (TableSource, error) {
	switch source {
	case SourcePostgres:
		c, err := f.CreatePostgresConnector(ctx)
		if err != nil {
			return nil, err
		}
		return c, nil
	case SourceSnowflake:
		c, err := f.CreateSnowflakeConnector(ctx)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown source %q, expected %s or %s", source, SourcePostgres, SourceSnowflake)
	}
}
