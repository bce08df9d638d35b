// pkg/connector/scan.go
package connector

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// rowScanner turns result rows into table rows keyed by column name
type rowScanner struct {
	columns []string
	values  []interface{}
	ptrs    []interface{}
}

func newRowScanner(rows *sql.Rows) (*rowScanner, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	s := &rowScanner{
		columns: columns,
		values:  make([]interface{}, len(columns)),
		ptrs:    make([]interface{}, len(columns)),
	}
	for i := range s.values {
		s.ptrs[i] = &s.values[i]
	}
	return s, nil
}

// scan reads the current row. Byte slices become strings; drivers reuse their buffers.
func (s *rowScanner) scan(rows *sql.Rows) (model.Row, error) {
	if err := rows.Scan(s.ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	row := make(model.Row, len(s.columns))
	for i, col := range s.columns {
		switch v := s.values[i].(type) {
		case []byte:
			row[col] = string(v)
		default:
			row[col] = v
		}
	}
	return row, nil
}

// ScanTable drains rows into a raw table named name and closes them
func ScanTable(name string, rows *sql.Rows) (*model.Table, error) {
	defer rows.Close()

	s, err := newRowScanner(rows)
	if err != nil {
		return nil, err
	}

	var out []model.Row
	for rows.Next() {
		row, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return model.NewTable(name, s.columns, out...), nil
}

// QuoteTableName quotes each dot-separated part of a possibly schema-qualified name
func QuoteTableName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// baseName returns the unqualified table name
func baseName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
