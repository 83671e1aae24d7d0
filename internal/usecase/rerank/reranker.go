package rerank

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
)

// Default boost weights and diversity parameters.
const (
	DefaultExactMatchWeight = 1.5
	DefaultPreferenceWeight = 1.3
	DefaultQualityWeight    = 1.2
	DefaultDiversityPenalty = 0.9

	// diversityThreshold is the result-set size above which the diversity
	// pass runs at all.
	diversityThreshold = 5
	// priceBucketWidth groups prices into buckets for diversity tracking.
	priceBucketWidth = 500
	// minBucketsBeforePenalty protects small result sets: a repeated price
	// bucket is only penalized after this many distinct buckets were seen.
	minBucketsBeforePenalty = 2

	// detailedContentLength is the body length that earns the
	// detailed-description quality signal.
	detailedContentLength = 200
)

// Quality-completeness signal weights; their sum normalizes the boost to [0,1].
const (
	priceSignalWeight   = 0.2
	areaSignalWeight    = 0.2
	imagesSignalWeight  = 0.1
	contentSignalWeight = 0.2
	totalSignalWeight   = priceSignalWeight + areaSignalWeight + imagesSignalWeight + contentSignalWeight
)

// defaultHasImages is the image-presence signal for listings with no
// has_images attribute at all. It defaults to TRUE, which inflates the
// quality boost for listings that simply carry no image data. This mirrors
// the behavior of the system this engine replaces and is kept on purpose;
// flip it only as a deliberate product decision.
const defaultHasImages = true

// stopWords are excluded from exact-match query terms.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "show": {}, "find": {}, "me": {}, "i": {}, "want": {},
	"need": {}, "looking": {},
}

// Config holds reranker boost weights.
type Config struct {
	ExactMatchWeight float64
	PreferenceWeight float64
	QualityWeight    float64
	DiversityPenalty float64
}

// ApplyDefaults fills zero fields with default weights.
func (c *Config) ApplyDefaults() {
	if c.ExactMatchWeight <= 0 {
		c.ExactMatchWeight = DefaultExactMatchWeight
	}
	if c.PreferenceWeight <= 0 {
		c.PreferenceWeight = DefaultPreferenceWeight
	}
	if c.QualityWeight <= 0 {
		c.QualityWeight = DefaultQualityWeight
	}
	if c.DiversityPenalty <= 0 || c.DiversityPenalty >= 1 {
		c.DiversityPenalty = DefaultDiversityPenalty
	}
}

// Reranker reorders candidates by a multi-factor relevance score with
// diversity damping. It is stateless across calls.
type Reranker struct {
	cfg    Config
	valuer Valuer
	logger *zap.Logger
}

// New creates a reranker. valuer may be nil; the investor strategy then
// relies on its price-per-area heuristic alone.
func New(cfg Config, valuer Valuer, logger *zap.Logger) *Reranker {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reranker{cfg: cfg, valuer: valuer, logger: logger}
}

// Rerank applies the three base boosts to every candidate's carried score,
// sorts descending, and runs the diversity pass on larger result sets.
// The input slice is not mutated and no truncation happens here.
func (r *Reranker) Rerank(text string, items []scored.Scored, prefs query.Preferences) []scored.Scored {
	if len(items) == 0 {
		return nil
	}

	terms := queryTerms(text)

	out := make([]scored.Scored, 0, len(items))
	for _, s := range items {
		score := s.Score()
		score *= 1 + exactMatchBoost(terms, s.Listing())*r.cfg.ExactMatchWeight
		if !prefs.IsEmpty() {
			score *= 1 + preferenceBoost(s.Listing(), prefs)*r.cfg.PreferenceWeight
		}
		score *= 1 + qualityBoost(s.Listing())*r.cfg.QualityWeight
		out = append(out, s.WithScore(score))
	}

	sortByScoreDesc(out)

	if len(out) > diversityThreshold {
		out = r.applyDiversityPenalty(out)
	}

	return out
}

// queryTerms lowercases and splits the query, dropping short terms and
// stop words.
func queryTerms(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// exactMatchBoost is the fraction of query terms found verbatim in the
// listing body plus title.
func exactMatchBoost(terms []string, l listing.Listing) float64 {
	if len(terms) == 0 {
		return 0
	}
	title, _ := l.String("title")
	text := strings.ToLower(l.Content() + " " + title)

	matches := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			matches++
		}
	}
	return float64(matches) / float64(len(terms))
}

// preferenceBoost is the fraction of supplied preference hints whose value
// equals the listing's corresponding attribute.
func preferenceBoost(l listing.Listing, prefs query.Preferences) float64 {
	total, matches := 0, 0

	if prefs.City != "" {
		total++
		if city, ok := l.String("city"); ok && strings.EqualFold(city, prefs.City) {
			matches++
		}
	}
	if prefs.PropertyType != "" {
		total++
		if pt, ok := l.String("property_type"); ok && strings.EqualFold(pt, prefs.PropertyType) {
			matches++
		}
	}
	if prefs.Rooms != 0 {
		total++
		if rooms, ok := l.Int("rooms"); ok && rooms == prefs.Rooms {
			matches++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(matches) / float64(total)
}

// qualityBoost scores data completeness, normalized to [0,1].
func qualityBoost(l listing.Listing) float64 {
	earned := 0.0

	if price, ok := l.Number("price"); ok && price != 0 {
		earned += priceSignalWeight
	}
	if area, ok := l.Number("area"); ok && area != 0 {
		earned += areaSignalWeight
	}
	if hasImages(l) {
		earned += imagesSignalWeight
	}
	if len(l.Content()) > detailedContentLength {
		earned += contentSignalWeight
	}

	return earned / totalSignalWeight
}

// hasImages reads the image-presence flag, defaulting to true when the
// attribute is entirely absent (see defaultHasImages).
func hasImages(l listing.Listing) bool {
	v, ok := l.Attr("has_images")
	if !ok {
		return defaultHasImages
	}
	return truthy(v)
}

// truthy mirrors loose scalar truthiness for flag attributes that may
// arrive as bools, numbers, or strings.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != "" && t != "false" && t != "0"
	default:
		return v != nil
	}
}

// applyDiversityPenalty damps repeated cities and repeated price buckets.
// The first occurrence of a city is free; every later one is penalized.
// Price buckets only penalize once enough distinct buckets were seen, so
// small homogeneous result sets are not over-punished.
func (r *Reranker) applyDiversityPenalty(items []scored.Scored) []scored.Scored {
	seenCities := make(map[string]struct{})
	seenBuckets := make(map[int]struct{})

	out := make([]scored.Scored, 0, len(items))
	for _, s := range items {
		score := s.Score()

		city, _ := s.Listing().String("city")
		city = strings.ToLower(city)
		if _, seen := seenCities[city]; seen {
			score *= r.cfg.DiversityPenalty
		} else {
			seenCities[city] = struct{}{}
		}

		if price, ok := s.Listing().Number("price"); ok && price != 0 {
			bucket := int(price) / priceBucketWidth
			_, seen := seenBuckets[bucket]
			if seen && len(seenBuckets) > minBucketsBeforePenalty {
				score *= r.cfg.DiversityPenalty
			} else {
				seenBuckets[bucket] = struct{}{}
			}
		}

		out = append(out, s.WithScore(score))
	}

	sortByScoreDesc(out)
	return out
}

func sortByScoreDesc(items []scored.Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score() > items[j].Score()
	})
}
