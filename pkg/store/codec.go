// pkg/store/codec.go
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/David-Botos/food-inspections/pkg/model"
)

func encodeColumns(columns []model.Column) (string, error) {
	b, err := json.Marshal(columns)
	if err != nil {
		return "", fmt.Errorf("failed to encode columns: %w", err)
	}
	return string(b), nil
}

func decodeColumns(s string) ([]model.Column, error) {
	var columns []model.Column
	if err := json.Unmarshal([]byte(s), &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

// encodeRow writes a row as a JSON object; times use RFC 3339 with nanoseconds
func encodeRow(row model.Row) (string, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeRow reverses encodeRow. Whole numbers come back as int64 and other numbers
// as float64; strings in time columns are parsed back into time.Time.
func decodeRow(doc string, md *model.CollectionMetadata) (model.Row, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	row := make(model.Row, len(raw))
	for col, v := range raw {
		switch val := v.(type) {
		case json.Number:
			if i, err := val.Int64(); err == nil {
				row[col] = i
				continue
			}
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			row[col] = f
		case string:
			if c := md.GetColumnByName(col); c != nil && c.Kind == model.ValueTime {
				ts, err := time.Parse(time.RFC3339Nano, val)
				if err != nil {
					return nil, fmt.Errorf("column %s: %w", col, err)
				}
				row[col] = ts
				continue
			}
			row[col] = val
		default:
			row[col] = val
		}
	}
	return row, nil
}
