package order

import (
	"math"
	"sort"

	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
)

// ByField sorts candidates by the numeric value of one attribute. A missing
// or non-numeric value sorts as +inf ascending and -inf descending, so such
// candidates always trail the list in either direction. The sort is stable:
// ties keep arrival order.
func ByField(items []scored.Scored, field string, direction query.SortDirection) []scored.Scored {
	if len(items) == 0 || field == "" {
		return items
	}

	missing := math.Inf(1)
	if direction == query.SortDescending {
		missing = math.Inf(-1)
	}

	key := func(s scored.Scored) float64 {
		v, ok := s.Listing().Number(field)
		if !ok {
			return missing
		}
		return v
	}

	out := make([]scored.Scored, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		if direction == query.SortDescending {
			return key(out[i]) > key(out[j])
		}
		return key(out[i]) < key(out[j])
	})

	return out
}
