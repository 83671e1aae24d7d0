package rerank

import (
	"context"

	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/valuation"
)

// Valuer estimates a listing's fair price. The investor strategy consults
// it for undervaluation signals; a failing valuer degrades that strategy,
// it never fails the search.
type Valuer interface {
	PriceEstimate(ctx context.Context, l listing.Listing) (valuation.Estimate, error)
}
