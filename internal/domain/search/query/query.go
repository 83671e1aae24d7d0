package query

import (
	"fmt"

	"github.com/kailas-cloud/propsearch/internal/domain"
	"github.com/kailas-cloud/propsearch/internal/domain/geo"
	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
	"github.com/kailas-cloud/propsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/propsearch/internal/domain/search/strategy"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength = 4096
	DefaultK      = 5
	MaxK          = 100
	DefaultFetchK = 20
	MaxFetchK     = 500
)

// SortDirection orders an explicit field sort.
type SortDirection string

// Sort direction constants.
const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// GeoCircle is a center point plus radius in kilometers.
type GeoCircle struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// Range is an optional inclusive numeric range; either bound may be nil.
type Range struct {
	Min *float64
	Max *float64
}

// IsSet reports whether at least one bound is present.
func (r Range) IsSet() bool { return r.Min != nil || r.Max != nil }

// Preferences are user hints consumed only by the reranker's
// metadata-alignment signal; they never filter.
type Preferences struct {
	City         string
	PropertyType string
	Rooms        int
}

// IsEmpty reports whether no hint is supplied.
func (p Preferences) IsEmpty() bool {
	return p.City == "" && p.PropertyType == "" && p.Rooms == 0
}

// Params collects raw query inputs before validation.
type Params struct {
	Text          string
	Mode          mode.Mode
	K             int
	FetchK        int
	SortBy        string
	SortDirection SortDirection
	Geo           *GeoCircle
	PriceRange    Range
	YearBuilt     Range
	EnergyCerts   []string
	Strategy      strategy.Strategy
	Preferences   Preferences
	ForcedFilters filters.Map
}

// Query is a validated search context. All fields are fixed for the
// lifetime of one Search call.
type Query struct {
	text          string
	searchMode    mode.Mode
	k             int
	fetchK        int
	sortBy        string
	sortDirection SortDirection
	geoCircle     *GeoCircle
	priceRange    Range
	yearBuilt     Range
	energyCerts   []string
	strat         strategy.Strategy
	prefs         Preferences
	forced        filters.Map
}

// New validates and normalizes query parameters.
// Defaults: mode=hybrid, strategy=balanced, k=5, fetchK=20 (raised to >= k).
func New(p Params) (Query, error) {
	if p.Text == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	if len(p.Text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if p.Mode == "" {
		p.Mode = mode.Hybrid
	}
	if !p.Mode.IsValid() {
		return Query{}, fmt.Errorf("%w: invalid retrieval mode %q", domain.ErrInvalidQuery, p.Mode)
	}
	if p.Strategy == "" {
		p.Strategy = strategy.Balanced
	}
	if !p.Strategy.IsValid() {
		return Query{}, fmt.Errorf("%w: invalid ranking strategy %q", domain.ErrInvalidQuery, p.Strategy)
	}
	if p.K <= 0 {
		p.K = DefaultK
	}
	if p.K > MaxK {
		p.K = MaxK
	}
	if p.FetchK <= 0 {
		p.FetchK = DefaultFetchK
	}
	if p.FetchK > MaxFetchK {
		p.FetchK = MaxFetchK
	}
	if p.FetchK < p.K {
		p.FetchK = p.K
	}
	if p.SortDirection == "" {
		p.SortDirection = SortAscending
	}
	if p.SortDirection != SortAscending && p.SortDirection != SortDescending {
		return Query{}, fmt.Errorf("%w: invalid sort direction %q", domain.ErrInvalidQuery, p.SortDirection)
	}
	if p.Geo != nil {
		if !geo.ValidateCoordinates(p.Geo.Lat, p.Geo.Lon) {
			return Query{}, fmt.Errorf("%w: geo center out of range", domain.ErrInvalidQuery)
		}
		if p.Geo.RadiusKm <= 0 {
			return Query{}, fmt.Errorf("%w: geo radius must be positive", domain.ErrInvalidQuery)
		}
	}

	return Query{
		text:          p.Text,
		searchMode:    p.Mode,
		k:             p.K,
		fetchK:        p.FetchK,
		sortBy:        p.SortBy,
		sortDirection: p.SortDirection,
		geoCircle:     p.Geo,
		priceRange:    p.PriceRange,
		yearBuilt:     p.YearBuilt,
		energyCerts:   p.EnergyCerts,
		strat:         p.Strategy,
		prefs:         p.Preferences,
		forced:        p.ForcedFilters.Clone(),
	}, nil
}

// Text returns the free-text query.
func (q *Query) Text() string { return q.text }

// Mode returns the retrieval mode.
func (q *Query) Mode() mode.Mode { return q.searchMode }

// K returns the requested result count.
func (q *Query) K() int { return q.k }

// FetchK returns the oversampling count (always >= K).
func (q *Query) FetchK() int { return q.fetchK }

// SortBy returns the explicit sort field, empty when reranking applies.
func (q *Query) SortBy() string { return q.sortBy }

// SortDirection returns the sort direction.
func (q *Query) SortDirection() SortDirection { return q.sortDirection }

// Geo returns the geo-radius constraint (nil when absent).
func (q *Query) Geo() *GeoCircle { return q.geoCircle }

// PriceRange returns the price constraint.
func (q *Query) PriceRange() Range { return q.priceRange }

// YearBuilt returns the year-built constraint.
func (q *Query) YearBuilt() Range { return q.yearBuilt }

// EnergyCerts returns the energy-certificate allowlist.
func (q *Query) EnergyCerts() []string { return q.energyCerts }

// Strategy returns the ranking strategy.
func (q *Query) Strategy() strategy.Strategy { return q.strat }

// Preferences returns the user preference hints.
func (q *Query) Preferences() Preferences { return q.prefs }

// ForcedFilters returns the caller-supplied filter map.
func (q *Query) ForcedFilters() filters.Map { return q.forced }
