package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
	"github.com/kailas-cloud/propsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
	"github.com/kailas-cloud/propsearch/internal/metrics"
	"github.com/kailas-cloud/propsearch/internal/usecase/extract"
	"github.com/kailas-cloud/propsearch/internal/usecase/filterchain"
	"github.com/kailas-cloud/propsearch/internal/usecase/order"
	"github.com/kailas-cloud/propsearch/internal/usecase/rerank"
)

// syntheticScoreStep spaces rank-derived scores for sources that return
// candidates in order but without per-item scores.
const syntheticScoreStep = 0.01

// Service orchestrates the search pipeline: constraint extraction,
// retrieval, filtering, and ordering. Once a query validated, Search
// always returns a result; collaborator failures degrade it, they never
// fail it.
type Service struct {
	source   Source
	reranker *rerank.Reranker
	logger   *zap.Logger
}

// New creates the search engine.
func New(source Source, reranker *rerank.Reranker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, reranker: reranker, logger: logger}
}

// Search runs the full pipeline and returns at most q.K() listings with
// scores stripped. Filters extracted from the query text are merged with
// the caller's forced filters; on a key collision the forced value wins.
// An explicit sort replaces reranking entirely, strategy included.
func (s *Service) Search(ctx context.Context, q *query.Query) []listing.Listing {
	merged := extract.Constraints(q.Text()).Merge(q.ForcedFilters())
	return s.run(ctx, q, merged)
}

// SearchWithFilters is the equality-only path: the caller's filter map is
// used as-is and no constraints are extracted from the text. The text still
// drives retrieval relevance.
func (s *Service) SearchWithFilters(ctx context.Context, text string, f filters.Map, k int) ([]listing.Listing, error) {
	q, err := query.New(query.Params{Text: text, K: k, ForcedFilters: f})
	if err != nil {
		return nil, err
	}
	return s.run(ctx, &q, q.ForcedFilters()), nil
}

func (s *Service) run(ctx context.Context, q *query.Query, applied filters.Map) []listing.Listing {
	start := time.Now()
	metrics.SearchesTotal.WithLabelValues(string(q.Mode()), string(q.Strategy())).Inc()

	candidates, err := s.source.Retrieve(ctx, q.Text(), q.Mode(), applied, q.K(), q.FetchK())
	if err != nil {
		metrics.SourceErrorsTotal.WithLabelValues(string(q.Mode())).Inc()
		s.logger.Error("candidate source failed",
			zap.String("mode", string(q.Mode())),
			zap.Error(err))
		return []listing.Listing{}
	}

	if q.Mode() == mode.MMR && allZeroScores(candidates) {
		candidates = rankScores(candidates)
	}

	filtered := filterchain.New(applied, q).Apply(candidates)
	if dropped := len(candidates) - len(filtered); dropped > 0 {
		metrics.SearchFilteredOut.Add(float64(dropped))
	}

	var ranked []scored.Scored
	if q.SortBy() != "" {
		ranked = order.ByField(filtered, q.SortBy(), q.SortDirection())
	} else {
		ranked = s.rerankSafely(ctx, q, filtered)
	}

	if len(ranked) > q.K() {
		ranked = ranked[:q.K()]
	}

	metrics.SearchDuration.WithLabelValues(string(q.Mode())).Observe(time.Since(start).Seconds())
	metrics.SearchResultsReturned.Observe(float64(len(ranked)))

	return scored.Listings(ranked)
}

// rerankSafely falls back to the filtered order when the reranker panics.
// A scoring bug must cost ranking quality, not the whole search.
func (s *Service) rerankSafely(ctx context.Context, q *query.Query, filtered []scored.Scored) (ranked []scored.Scored) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RerankFallbacksTotal.Inc()
			s.logger.Error("reranker panicked, using pre-rerank order",
				zap.Any("panic", r))
			ranked = filtered
		}
	}()
	return s.reranker.RerankWithStrategy(ctx, q.Text(), filtered, q.Strategy(), q.Preferences())
}

func allZeroScores(items []scored.Scored) bool {
	for _, s := range items {
		if s.Score() != 0 {
			return false
		}
	}
	return len(items) > 0
}

// rankScores assigns descending synthetic scores by position, first is 1.0.
func rankScores(items []scored.Scored) []scored.Scored {
	out := make([]scored.Scored, len(items))
	for i, s := range items {
		out[i] = s.WithScore(1.0 - syntheticScoreStep*float64(i))
	}
	return out
}
