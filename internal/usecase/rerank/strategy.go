package rerank

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
	"github.com/kailas-cloud/propsearch/internal/domain/search/strategy"
	"github.com/kailas-cloud/propsearch/internal/domain/valuation"
	"github.com/kailas-cloud/propsearch/internal/metrics"
)

// Strategy bias amounts. Biases within one strategy are additive and the
// total is applied as score *= 1 + total.
const (
	investorHighlyUndervaluedBias = 0.5
	investorUndervaluedBias       = 0.3
	investorCheapPerAreaBias      = 0.3
	familyRoomsBias               = 0.4
	familyGardenBias              = 0.3
	familyParkingBias             = 0.2
	bargainCheapBias              = 0.5

	// investorPricePerAreaCeiling is the unit-price threshold below which a
	// listing looks cheap for its size, independent of the valuation model.
	investorPricePerAreaCeiling = 3000.0
	// bargainPriceCeiling bounds the absolute-price bargain signal.
	bargainPriceCeiling = 200_000.0
	// familyMinRooms is the room count a family-sized listing starts at.
	familyMinRooms = 3.0
)

// RerankWithStrategy runs the base rerank and then a second pass that biases
// scores toward the persona the strategy encodes. Balanced applies no bias.
// The order of input candidates is not relied upon and the input slice is
// not mutated.
func (r *Reranker) RerankWithStrategy(ctx context.Context, text string, items []scored.Scored, strat strategy.Strategy, prefs query.Preferences) []scored.Scored {
	out := r.Rerank(text, items, prefs)
	if strat == strategy.Balanced || len(out) == 0 {
		return out
	}

	for i, s := range out {
		bias := r.strategyBias(ctx, strat, s.Listing())
		if bias != 0 {
			out[i] = s.WithScore(s.Score() * (1 + bias))
		}
	}

	sortByScoreDesc(out)
	return out
}

func (r *Reranker) strategyBias(ctx context.Context, strat strategy.Strategy, l listing.Listing) float64 {
	switch strat {
	case strategy.Investor:
		return r.investorBias(ctx, l)
	case strategy.Family:
		return familyBias(l)
	case strategy.Bargain:
		return bargainBias(l)
	default:
		return 0
	}
}

// investorBias rewards undervaluation. The model-based signal and the raw
// price-per-area signal are independent and stack: a highly undervalued
// listing that is also cheap per square meter earns both.
func (r *Reranker) investorBias(ctx context.Context, l listing.Listing) float64 {
	bias := 0.0

	if r.valuer != nil {
		est, err := r.valuer.PriceEstimate(ctx, l)
		if err != nil {
			metrics.ValuationErrorsTotal.Inc()
			r.logger.Warn("valuation unavailable, skipping model bias",
				zap.String("listing_id", l.ID()),
				zap.Error(err))
		} else {
			switch est.Status() {
			case valuation.HighlyUndervalued:
				bias += investorHighlyUndervaluedBias
			case valuation.Undervalued:
				bias += investorUndervaluedBias
			}
		}
	}

	price, priceOK := l.Number("price")
	area, areaOK := l.Number("area")
	if priceOK && areaOK && area > 0 && price/area < investorPricePerAreaCeiling {
		bias += investorCheapPerAreaBias
	}

	return bias
}

// familyBias rewards space and family amenities.
func familyBias(l listing.Listing) float64 {
	bias := 0.0

	if rooms, ok := l.Number("rooms"); ok && rooms >= familyMinRooms {
		bias += familyRoomsBias
	}
	if v, ok := l.Attr("has_garden"); ok && truthy(v) {
		bias += familyGardenBias
	}
	if v, ok := l.Attr("has_parking"); ok && truthy(v) {
		bias += familyParkingBias
	}

	return bias
}

// bargainBias rewards low absolute price. Listings without a positive price
// earn nothing.
func bargainBias(l listing.Listing) float64 {
	price, ok := l.Number("price")
	if ok && price > 0 && price < bargainPriceCeiling {
		return bargainCheapBias
	}
	return 0
}
