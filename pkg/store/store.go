// pkg/store/store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// ErrCollectionNotFound is returned when reading a collection that was never replaced
var ErrCollectionNotFound = errors.New("collection not found")

// Store keeps each collection as a table of JSON documents plus a row in the collections table.
// It runs on SQLite and on PostgreSQL through sqlx, rebinding placeholders per driver.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type collectionRow struct {
	Name      string `db:"name"`
	Kind      string `db:"kind"`
	State     string `db:"state"`
	Columns   string `db:"columns"`
	RowCount  int    `db:"row_count"`
	UpdatedAt string `db:"updated_at"`
}

type documentRow struct {
	Position int    `db:"position"`
	Doc      string `db:"doc"`
}

// Open connects to driver (sqlite3 or pgx) and prepares the collections table
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}
	if driver == "sqlite3" {
		// One writer at a time; concurrent connections would see "database is locked"
		db.SetMaxOpenConns(1)
	}

	s, err := New(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection, e.g. the PostgreSQL connector's pool
func New(ctx context.Context, db *sqlx.DB, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{db: db, logger: logger.Named("store")}
	if err := s.setup(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup store: %w", err)
	}
	return s, nil
}

func (s *Store) setup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			state TEXT NOT NULL,
			columns TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create collections table: %w", err)
	}
	return nil
}

// DB returns the underlying connection
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

func documentTable(name string) string {
	return pq.QuoteIdentifier("collection_" + name)
}

// Replace drops the named collection and stores every row of t in its place, atomically
func (s *Store) Replace(ctx context.Context, name string, kind model.DatasetKind, t *model.Table) (err error) {
	start := time.Now()
	columns := model.DescribeColumns(t)
	colJSON, err := encodeColumns(columns)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	table := documentTable(name)
	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE %s (position INTEGER PRIMARY KEY, doc TEXT NOT NULL)", table)); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		fmt.Sprintf("INSERT INTO %s (position, doc) VALUES (?, ?)", table)))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		doc, encErr := encodeRow(row)
		if encErr != nil {
			err = fmt.Errorf("failed to encode row %d of %s: %w", i, name, encErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, i, doc); err != nil {
			return fmt.Errorf("failed to insert row %d of %s: %w", i, name, err)
		}
	}

	if _, err = tx.ExecContext(ctx, tx.Rebind("DELETE FROM collections WHERE name = ?"), name); err != nil {
		return fmt.Errorf("failed to clear metadata for %s: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO collections (name, kind, state, columns, row_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), name, string(kind), t.State.String(), colJSON, t.Len(), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to write metadata for %s: %w", name, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection %s: %w", name, err)
	}

	s.logger.Info("Replaced collection",
		zap.String("collection", name),
		zap.String("state", t.State.String()),
		zap.Int("rows", t.Len()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Metadata returns the stored description of a collection
func (s *Store) Metadata(ctx context.Context, name string) (*model.CollectionMetadata, error) {
	var row collectionRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		"SELECT name, kind, state, columns, row_count, updated_at FROM collections WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrCollectionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata for %s: %w", name, err)
	}
	return row.toMetadata()
}

// Collections lists every stored collection by name
func (s *Store) Collections(ctx context.Context) ([]model.CollectionMetadata, error) {
	var rows []collectionRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT name, kind, state, columns, row_count, updated_at FROM collections ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	out := make([]model.CollectionMetadata, 0, len(rows))
	for _, r := range rows {
		md, err := r.toMetadata()
		if err != nil {
			return nil, err
		}
		out = append(out, *md)
	}
	return out, nil
}

// Read loads a collection back into a table carrying its stored state
func (s *Store) Read(ctx context.Context, name string) (*model.Table, error) {
	md, err := s.Metadata(ctx, name)
	if err != nil {
		return nil, err
	}

	var docs []documentRow
	if err := s.db.SelectContext(ctx, &docs,
		fmt.Sprintf("SELECT position, doc FROM %s ORDER BY position", documentTable(name))); err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}

	rows := make([]model.Row, len(docs))
	for i, d := range docs {
		row, err := decodeRow(d.Doc, md)
		if err != nil {
			return nil, fmt.Errorf("failed to decode row %d of %s: %w", d.Position, name, err)
		}
		rows[i] = row
	}

	t := model.NewTable(name, md.ColumnNames(), rows...)
	t.State = md.State
	return t, nil
}

func (r collectionRow) toMetadata() (*model.CollectionMetadata, error) {
	kind, err := model.ParseDatasetKind(r.Kind)
	if err != nil {
		return nil, err
	}
	state, err := model.ParseState(r.State)
	if err != nil {
		return nil, err
	}
	columns, err := decodeColumns(r.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to decode columns of %s: %w", r.Name, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at of %s: %w", r.Name, err)
	}

	return &model.CollectionMetadata{
		Name:      r.Name,
		Kind:      kind,
		State:     state,
		Columns:   columns,
		RowCount:  r.RowCount,
		UpdatedAt: updated,
	}, nil
}
