package filterchain

import (
	"strings"

	"github.com/kailas-cloud/propsearch/internal/domain/geo"
	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/scored"
)

// Chain applies post-retrieval filters in a fixed order. Every stage is
// score-preserving: a surviving candidate keeps the exact score it arrived
// with. A stage whose configuration is absent is skipped entirely.
type Chain struct {
	equality    filters.Map
	priceRange  query.Range
	geoCircle   *query.GeoCircle
	yearBuilt   query.Range
	energyCerts []string
}

// New builds a filter chain from merged equality constraints and the
// structured constraints of a query.
func New(equality filters.Map, q *query.Query) Chain {
	return Chain{
		equality:    equality,
		priceRange:  q.PriceRange(),
		geoCircle:   q.Geo(),
		yearBuilt:   q.YearBuilt(),
		energyCerts: q.EnergyCerts(),
	}
}

// Apply runs all configured stages in order: equality, price range,
// geo radius, year-built range, energy-certificate allowlist.
func (c Chain) Apply(items []scored.Scored) []scored.Scored {
	out := items
	if !c.equality.IsEmpty() {
		out = filterEquality(out, c.equality)
	}
	if c.priceRange.IsSet() {
		out = filterPrice(out, c.priceRange)
	}
	if c.geoCircle != nil && c.geoCircle.RadiusKm > 0 {
		out = filterGeo(out, *c.geoCircle)
	}
	if c.yearBuilt.IsSet() {
		out = filterYearBuilt(out, c.yearBuilt)
	}
	if len(c.energyCerts) > 0 {
		out = filterEnergyCerts(out, c.energyCerts)
	}
	return out
}

// filterEquality keeps candidates whose attributes equal every constraint
// exactly. Comparison is type-sensitive and a missing attribute fails.
func filterEquality(items []scored.Scored, constraints filters.Map) []scored.Scored {
	out := make([]scored.Scored, 0, len(items))
	for _, s := range items {
		if matchesAll(s, constraints) {
			out = append(out, s)
		}
	}
	return out
}

func matchesAll(s scored.Scored, constraints filters.Map) bool {
	for name, want := range constraints {
		got, ok := s.Listing().Attr(name)
		if !ok || !attrEquals(got, want) {
			return false
		}
	}
	return true
}

// attrEquals compares scalars of identical dynamic kind. Integer widths are
// unified, but a string "3" never equals a numeric 3.
func attrEquals(got, want any) bool {
	switch w := want.(type) {
	case string:
		g, ok := got.(string)
		return ok && g == w
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	case float64:
		g, ok := asFloat(got)
		return ok && g == w
	case float32:
		g, ok := asFloat(got)
		return ok && g == float64(w)
	case int:
		g, ok := asInt(got)
		return ok && g == int64(w)
	case int64:
		g, ok := asInt(got)
		return ok && g == w
	default:
		return false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// filterPrice keeps candidates whose coerced price falls inside the
// inclusive range. Absent or non-numeric prices are excluded.
func filterPrice(items []scored.Scored, r query.Range) []scored.Scored {
	out := make([]scored.Scored, 0, len(items))
	for _, s := range items {
		price, ok := s.Listing().Number("price")
		if !ok {
			continue
		}
		if r.Min != nil && price < *r.Min {
			continue
		}
		if r.Max != nil && price > *r.Max {
			continue
		}
		out = append(out, s)
	}
	return out
}

// filterGeo keeps candidates within radius km of the center (inclusive),
// excluding candidates without readable coordinates.
func filterGeo(items []scored.Scored, circle query.GeoCircle) []scored.Scored {
	out := make([]scored.Scored, 0, len(items))
	for _, s := range items {
		lat, lon, ok := s.Listing().Coordinates()
		if !ok {
			continue
		}
		if geo.Haversine(circle.Lat, circle.Lon, lat, lon) <= circle.RadiusKm {
			out = append(out, s)
		}
	}
	return out
}

// filterYearBuilt keeps candidates whose year_built parses to an integer
// inside the inclusive range; either bound may be absent.
func filterYearBuilt(items []scored.Scored, r query.Range) []scored.Scored {
	out := make([]scored.Scored, 0, len(items))
	for _, s := range items {
		year, ok := s.Listing().Int("year_built")
		if !ok {
			continue
		}
		if r.Min != nil && year < int(*r.Min) {
			continue
		}
		if r.Max != nil && year > int(*r.Max) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// filterEnergyCerts keeps candidates whose energy_cert is in the allowlist,
// compared case-insensitively after trimming. Candidates without a
// certificate are excluded once an allowlist is configured.
func filterEnergyCerts(items []scored.Scored, certs []string) []scored.Scored {
	allow := make(map[string]struct{}, len(certs))
	for _, c := range certs {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			allow[c] = struct{}{}
		}
	}
	if len(allow) == 0 {
		return items
	}

	out := make([]scored.Scored, 0, len(items))
	for _, s := range items {
		cert, ok := s.Listing().String("energy_cert")
		if !ok {
			continue
		}
		if _, found := allow[strings.ToLower(strings.TrimSpace(cert))]; found {
			out = append(out, s)
		}
	}
	return out
}
