package aggregate

import (
	"fmt"
	"sort"

	"github.com/David-Botos/food-inspections/pkg/model"
)

// DefaultTopViolationCodes is how many codes the violation chart shows
const DefaultTopViolationCodes = 14

// CodeCount is the number of citations of one violation code
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// ZipCount is the number of violations recorded in one zip code
type ZipCount struct {
	ZipCode string `json:"zipCode"`
	Count   int    `json:"count"`
}

// TopViolationCodes returns the n most cited violation codes, least cited first.
// Codes with equal counts are ordered by code. n <= 0 returns every code.
func TopViolationCodes(violations *model.Table, n int) ([]CodeCount, error) {
	counts, err := countBy(violations, model.ColViolationCode)
	if err != nil {
		return nil, err
	}

	out := make([]CodeCount, 0, len(counts))
	for code, c := range counts {
		out = append(out, CodeCount{Code: code, Count: c})
	}
	// Most cited first to cut the top n
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

// ViolationsByZip counts violations per zip code, ordered by zip code
func ViolationsByZip(violations *model.Table) ([]ZipCount, error) {
	counts, err := countBy(violations, model.ColZipCode)
	if err != nil {
		return nil, err
	}

	out := make([]ZipCount, 0, len(counts))
	for zip, c := range counts {
		out = append(out, ZipCount{ZipCode: zip, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return lessGroup(out[i].ZipCode, out[j].ZipCode) })
	return out, nil
}

func countBy(t *model.Table, column string) (map[string]int, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, row := range t.Rows {
		v := row[column]
		if v == nil {
			continue
		}
		counts[fmt.Sprint(v)]++
	}
	return counts, nil
}
