// Package aggregate computes grouped score statistics and violation summaries
// over cleaned inspection datasets.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/food-inspections/pkg/cleaner"
	"github.com/David-Botos/food-inspections/pkg/model"
)

// Grouping selects the dimension scores are grouped by
type Grouping int

const (
	// BySeating groups on the description left after seat numbers were extracted
	BySeating Grouping = iota + 1
	// ByZipCode groups on the zip code
	ByZipCode
)

// ErrUnknownGrouping is returned for a Grouping outside the enumerated options
var ErrUnknownGrouping = errors.New("unknown grouping choice")

// ParseGrouping accepts "seating" or "zip"
func ParseGrouping(s string) (Grouping, error) {
	switch s {
	case "seating", "seat", "vendor":
		return BySeating, nil
	case "zip", "zipcode", "zip-code":
		return ByZipCode, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGrouping, s)
	}
}

// Column returns the inspections column the grouping reads
func (g Grouping) Column() string {
	switch g {
	case BySeating:
		return model.ColDescription
	case ByZipCode:
		return model.ColZipCode
	default:
		return ""
	}
}

// String returns the CLI name of the grouping
func (g Grouping) String() string {
	switch g {
	case BySeating:
		return "seating"
	case ByZipCode:
		return "zip"
	default:
		return fmt.Sprintf("unknown(%d)", int(g))
	}
}

type bucketKey struct {
	group string
	year  int
}

// Aggregate computes mean, median and mode of SCORE per (group, calendar year).
// Rows without a group value, an activity date or a numeric score are skipped.
// Results are sorted by group, numerically when both groups are numbers, then by year.
func Aggregate(choice Grouping, inspections *model.Table) ([]model.AggregateRow, error) {
	column := choice.Column()
	if column == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGrouping, int(choice))
	}
	if inspections.State != model.StateCleaned && !inspections.HasColumn(model.ColSeatNumbers) {
		return nil, &model.InvalidShapeError{
			Table:  inspections.Name,
			Reason: fmt.Sprintf("column %q not derived; clean the datasets first", model.ColSeatNumbers),
		}
	}
	if err := inspections.Require(column, model.ColScore, model.ColActivityDate); err != nil {
		return nil, err
	}

	scores := make(map[bucketKey][]float64)
	for _, row := range inspections.Rows {
		group := row[column]
		if group == nil {
			continue
		}
		date, ok := row[model.ColActivityDate].(time.Time)
		if !ok {
			continue
		}
		score, err := cleaner.ToFloat(row[model.ColScore])
		if err != nil {
			continue
		}
		k := bucketKey{group: fmt.Sprint(group), year: date.Year()}
		scores[k] = append(scores[k], score)
	}

	keys := make([]bucketKey, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].group != keys[j].group {
			return lessGroup(keys[i].group, keys[j].group)
		}
		return keys[i].year < keys[j].year
	})

	// Mode is computed on its own and joined back by key
	modes := make(map[bucketKey][]float64, len(keys))
	for _, k := range keys {
		modes[k] = Modes(scores[k])
	}

	rows := make([]model.AggregateRow, 0, len(keys))
	for _, k := range keys {
		values := scores[k]
		// Ties resolve to the smallest value
		mode := modes[k][0]
		rows = append(rows, model.AggregateRow{
			Group:  k.group,
			Year:   k.year,
			Mean:   round2(stat.Mean(values, nil)),
			Median: round2(Median(values)),
			Mode:   round2(mode),
			Modes:  roundAll(modes[k]),
			Count:  len(values),
		})
	}
	return rows, nil
}

// Median returns the middle value, averaging the two middle values of an even-length set
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Modes returns every value that shares the maximal frequency, ascending
func Modes(values []float64) []float64 {
	counts := make(map[float64]int, len(values))
	best := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
		}
	}

	var out []float64
	for v, c := range counts {
		if c == best {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func round2(v float64) float64 {
	return scalar.RoundEven(v, 2)
}

func roundAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = round2(v)
	}
	return out
}

// lessGroup orders numeric group values numerically and everything else lexically
func lessGroup(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
