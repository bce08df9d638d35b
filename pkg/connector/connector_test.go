package connector

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/food-inspections/pkg/config"
	"github.com/David-Botos/food-inspections/pkg/model"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "source.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadTable(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE "raw violations" ("SERIAL NUMBER" TEXT, "VIOLATION CODE" TEXT, "POINTS" INTEGER, "NOTE" BLOB)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO "raw violations" VALUES ('S1', 'F023', 4, x'6869'), ('S2', 'F044', NULL, NULL)`)
	require.NoError(t, err)

	tbl, err := readTable(ctx, db, "raw violations", 0)
	require.NoError(t, err)

	assert.Equal(t, "raw violations", tbl.Name)
	assert.Equal(t, []string{"SERIAL NUMBER", "VIOLATION CODE", "POINTS", "NOTE"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, model.Row{"SERIAL NUMBER": "S1", "VIOLATION CODE": "F023", "POINTS": int64(4), "NOTE": "hi"}, tbl.Rows[0])
	assert.Nil(t, tbl.Rows[1]["POINTS"])
	assert.Equal(t, model.StateRaw, tbl.State)
}

func TestReadTableMissing(t *testing.T) {
	_, err := readTable(context.Background(), openSQLite(t), "nope", 0)
	assert.ErrorContains(t, err, "failed to query table nope")
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"public"."inspections"`, QuoteTableName("public.inspections"))
	assert.Equal(t, `"a""b"`, QuoteTableName(`a"b`))
	assert.Equal(t, "inspections", baseName("public.inspections"))
}

func TestPingWithTimeout(t *testing.T) {
	db := openSQLite(t)
	ApplyConnectionSettings(db, 2, 1, 0, 0)

	require.NoError(t, PingWithTimeout(context.Background(), db, time.Second))
	assert.Equal(t, 2, GetConnectionStats(db).MaxOpenConns)
}

func TestCreateSourceRejectsUnknown(t *testing.T) {
	f := NewConnectorFactory(config.Default(), nil)

	_, err := f.CreateSource(context.Background(), "oracle")
	assert.ErrorContains(t, err, "unknown source")

	// Missing credentials fail before any connection is attempted
	_, err = f.CreateSource(context.Background(), SourcePostgres)
	assert.ErrorContains(t, err, "POSTGRES_USER")

	_, err = f.CreateSource(context.Background(), SourceSnowflake)
	assert.ErrorContains(t, err, "snowflake configuration incomplete")
}

func TestPostgresValidateOnReadOnlySession(t *testing.T) {
	dsn := os.Getenv("INSPECTIONS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("INSPECTIONS_TEST_POSTGRES_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()
	// a single connection keeps the session setting in effect
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "SET default_transaction_read_only = on")
	require.NoError(t, err)

	conn := &PostgresConnector{db: db, logger: zaptest.NewLogger(t), cfg: &config.PostgresConfig{}}
	assert.NoError(t, conn.Validate(ctx))
	assert.ErrorContains(t, conn.ValidateWritable(ctx), "permission validation failed")
}
