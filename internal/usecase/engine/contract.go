package engine

import (
	"context"

	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
	"github.com/kailas-cloud/propsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
)

// Source retrieves scored candidates for a query. The filter map is a
// pre-filter hint: a source may narrow with it or ignore it, the engine
// re-applies every constraint afterwards either way. fetchK is the
// oversampling count and is always >= k.
//
// MMR sources that have no meaningful per-item score return zero scores;
// the engine assigns rank-derived scores in that case.
type Source interface {
	Retrieve(ctx context.Context, text string, m mode.Mode, f filters.Map, k, fetchK int) ([]scored.Scored, error)
}
