package rerank

import (
	"math"
	"testing"

	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
)

func mk(id, content string, score float64, attrs map[string]any) scored.Scored {
	return scored.New(listing.New(id, content, attrs), score)
}

func ids(items []scored.Scored) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Listing().ID()
	}
	return out
}

func scoreOf(t *testing.T, items []scored.Scored, id string) float64 {
	t.Helper()
	for _, s := range items {
		if s.Listing().ID() == id {
			return s.Score()
		}
	}
	t.Fatalf("listing %q not in result %v", id, ids(items))
	return 0
}

func newTestReranker() *Reranker {
	return New(Config{}, nil, nil)
}

func TestRerank_ExactMatchBoostsMatchingListing(t *testing.T) {
	// Same base score and identical attributes so only the term match
	// separates the two.
	attrs := map[string]any{"has_images": false}
	items := []scored.Scored{
		mk("plain", "a nice place somewhere", 0.5, attrs),
		mk("hit", "spacious balcony apartment", 0.5, attrs),
	}

	got := newTestReranker().Rerank("apartment with balcony", items, query.Preferences{})

	if got[0].Listing().ID() != "hit" {
		t.Fatalf("order = %v, want hit first", ids(got))
	}
	if scoreOf(t, got, "hit") <= scoreOf(t, got, "plain") {
		t.Error("matching listing should outscore the non-matching one")
	}
}

func TestRerank_StopWordsAndShortTermsIgnored(t *testing.T) {
	attrs := map[string]any{"has_images": false}
	items := []scored.Scored{
		mk("stop-hit", "looking for the and with me", 0.5, attrs),
		mk("real-hit", "city gym nearby", 0.5, attrs),
	}

	// Every term except "gym" is a stop word or too short.
	got := newTestReranker().Rerank("find me a gym", items, query.Preferences{})

	if got[0].Listing().ID() != "real-hit" {
		t.Fatalf("order = %v, want real-hit first", ids(got))
	}
	// The only surviving term is "gym", which stop-hit does not contain.
	if s := scoreOf(t, got, "stop-hit"); math.Abs(s-0.5) > 1e-9 {
		t.Errorf("stop-word matches earned a boost: score = %v, want 0.5", s)
	}
	want := 0.5 * (1 + 1.0*DefaultExactMatchWeight)
	if s := scoreOf(t, got, "real-hit"); math.Abs(s-want) > 1e-9 {
		t.Errorf("real-hit score = %v, want %v", s, want)
	}
}

func TestRerank_TitleCountsTowardExactMatch(t *testing.T) {
	attrs := map[string]any{"has_images": false}
	items := []scored.Scored{
		mk("title-hit", "plain body", 0.5, map[string]any{"title": "Penthouse with terrace", "has_images": false}),
		mk("miss", "plain body", 0.5, attrs),
	}

	got := newTestReranker().Rerank("penthouse terrace", items, query.Preferences{})
	if got[0].Listing().ID() != "title-hit" {
		t.Fatalf("order = %v, want title-hit first", ids(got))
	}
}

func TestRerank_PreferenceBoostFraction(t *testing.T) {
	items := []scored.Scored{
		mk("full", "", 0.5, map[string]any{"city": "Warsaw", "property_type": "apartment", "rooms": 3, "has_images": false}),
		mk("half", "", 0.5, map[string]any{"city": "Warsaw", "property_type": "house", "has_images": false}),
		mk("none", "", 0.5, map[string]any{"city": "Gdansk", "property_type": "house", "has_images": false}),
	}
	prefs := query.Preferences{City: "warsaw", PropertyType: "Apartment"}

	got := newTestReranker().Rerank("", items, prefs)

	full, half, none := scoreOf(t, got, "full"), scoreOf(t, got, "half"), scoreOf(t, got, "none")
	if !(full > half && half > none) {
		t.Fatalf("expected full > half > none, got %v %v %v", full, half, none)
	}
	// City and type both match: fraction 1.0 over two supplied hints.
	want := 0.5 * (1 + 1.0*DefaultPreferenceWeight)
	if math.Abs(full-want) > 1e-9 {
		t.Errorf("full-match score = %v, want %v", full, want)
	}
}

func TestRerank_QualityBoostImageDefaultTrue(t *testing.T) {
	items := []scored.Scored{
		mk("no-flag", "", 0.5, map[string]any{}),
		mk("flag-false", "", 0.5, map[string]any{"has_images": false}),
	}

	got := newTestReranker().Rerank("", items, query.Preferences{})

	// An absent flag counts as having images, so no-flag earns the signal
	// and flag-false does not.
	if scoreOf(t, got, "no-flag") <= scoreOf(t, got, "flag-false") {
		t.Error("absent has_images should default to true and outscore an explicit false")
	}
}

func TestRerank_QualityBoostFullCompleteness(t *testing.T) {
	long := make([]byte, detailedContentLength+1)
	for i := range long {
		long[i] = 'x'
	}
	items := []scored.Scored{
		mk("complete", string(long), 0.5, map[string]any{"price": 300_000.0, "area": 72.0, "has_images": true}),
	}

	got := newTestReranker().Rerank("", items, query.Preferences{})

	want := 0.5 * (1 + 1.0*DefaultQualityWeight)
	if s := scoreOf(t, got, "complete"); math.Abs(s-want) > 1e-9 {
		t.Errorf("fully complete listing score = %v, want %v", s, want)
	}
}

func TestRerank_DiversityPenalizesRepeatedCity(t *testing.T) {
	// Six candidates trigger the diversity pass. Five share a city with
	// identical scores; the sixth sits in another city with the same base
	// score and must come out ahead of the repeats.
	attrs := func(city string) map[string]any {
		return map[string]any{"city": city, "has_images": false}
	}
	items := []scored.Scored{
		mk("w1", "", 0.5, attrs("Warsaw")),
		mk("w2", "", 0.5, attrs("Warsaw")),
		mk("w3", "", 0.5, attrs("warsaw")),
		mk("w4", "", 0.5, attrs("Warsaw")),
		mk("w5", "", 0.5, attrs("Warsaw")),
		mk("g1", "", 0.5, attrs("Gdansk")),
	}

	got := newTestReranker().Rerank("", items, query.Preferences{})

	first, g1 := scoreOf(t, got, "w1"), scoreOf(t, got, "g1")
	if first != g1 {
		t.Errorf("first occurrence per city should be unpenalized: w1=%v g1=%v", first, g1)
	}
	for _, id := range []string{"w2", "w3", "w4", "w5"} {
		if s := scoreOf(t, got, id); math.Abs(s-first*DefaultDiversityPenalty) > 1e-9 {
			t.Errorf("%s = %v, want %v (city repeat, case-insensitive)", id, s, first*DefaultDiversityPenalty)
		}
	}
}

func TestRerank_DiversitySkippedForSmallResults(t *testing.T) {
	attrs := map[string]any{"city": "Warsaw", "has_images": false}
	items := []scored.Scored{
		mk("a", "", 0.5, attrs),
		mk("b", "", 0.5, attrs),
		mk("c", "", 0.5, attrs),
	}

	got := newTestReranker().Rerank("", items, query.Preferences{})

	if scoreOf(t, got, "a") != scoreOf(t, got, "c") {
		t.Error("diversity penalty must not run on small result sets")
	}
}

func TestRerank_PriceBucketPenaltyNeedsDistinctBuckets(t *testing.T) {
	attrs := func(city string, price float64) map[string]any {
		return map[string]any{"city": city, "price": price, "has_images": false}
	}
	// Distinct cities so only the bucket rule is in play. The first two
	// share bucket 400 but only two buckets exist when the repeat shows up,
	// so it goes free. The last repeat arrives after three distinct buckets
	// and is penalized.
	items := []scored.Scored{
		mk("b1", "", 0.5, attrs("a", 200_100)),
		mk("b1-early-repeat", "", 0.5, attrs("b", 200_400)),
		mk("b2", "", 0.5, attrs("c", 100_000)),
		mk("b3", "", 0.5, attrs("d", 350_000)),
		mk("b3-late-repeat", "", 0.5, attrs("e", 350_200)),
		mk("filler", "", 0.5, attrs("f", 50_000)),
	}

	got := newTestReranker().Rerank("", items, query.Preferences{})

	base := scoreOf(t, got, "b1")
	if s := scoreOf(t, got, "b1-early-repeat"); s != base {
		t.Errorf("repeat before enough distinct buckets penalized: %v, want %v", s, base)
	}
	if s := scoreOf(t, got, "b3-late-repeat"); math.Abs(s-base*DefaultDiversityPenalty) > 1e-9 {
		t.Errorf("late bucket repeat = %v, want %v", s, base*DefaultDiversityPenalty)
	}
}

func TestRerank_NoTruncationAndInputUntouched(t *testing.T) {
	items := []scored.Scored{
		mk("low", "balcony", 0.1, map[string]any{"has_images": false}),
		mk("high", "", 0.9, map[string]any{"has_images": false}),
	}

	got := newTestReranker().Rerank("balcony", items, query.Preferences{})

	if len(got) != len(items) {
		t.Fatalf("reranker must not truncate: got %d of %d", len(got), len(items))
	}
	if items[0].Score() != 0.1 || items[0].Listing().ID() != "low" {
		t.Error("input slice mutated")
	}
}

func TestRerank_EmptyInput(t *testing.T) {
	if got := newTestReranker().Rerank("anything", nil, query.Preferences{}); len(got) != 0 {
		t.Fatalf("empty input should yield empty output, got %v", ids(got))
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.ExactMatchWeight != DefaultExactMatchWeight ||
		cfg.PreferenceWeight != DefaultPreferenceWeight ||
		cfg.QualityWeight != DefaultQualityWeight ||
		cfg.DiversityPenalty != DefaultDiversityPenalty {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	cfg = Config{ExactMatchWeight: 2.0, DiversityPenalty: 0.8}
	cfg.ApplyDefaults()
	if cfg.ExactMatchWeight != 2.0 || cfg.DiversityPenalty != 0.8 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}
