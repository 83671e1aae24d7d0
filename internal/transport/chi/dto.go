package chi

import (
	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
	"github.com/kailas-cloud/propsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/propsearch/internal/domain/search/query"
	"github.com/kailas-cloud/propsearch/internal/domain/search/strategy"
)

// SearchRequest is the POST /search payload.
type SearchRequest struct {
	Query         string          `json:"query"`
	Mode          string          `json:"mode,omitempty"`
	K             int             `json:"k,omitempty"`
	FetchK        int             `json:"fetch_k,omitempty"`
	SortBy        string          `json:"sort_by,omitempty"`
	SortDirection string          `json:"sort_direction,omitempty"`
	Strategy      string          `json:"strategy,omitempty"`
	Geo           *GeoFilter      `json:"geo,omitempty"`
	PriceRange    *RangeFilter    `json:"price_range,omitempty"`
	YearBuilt     *RangeFilter    `json:"year_built,omitempty"`
	EnergyCerts   []string        `json:"energy_certs,omitempty"`
	Preferences   *PreferencesDTO `json:"preferences,omitempty"`
	Filters       map[string]any  `json:"filters,omitempty"`
}

// GeoFilter is a center point plus radius in kilometers.
type GeoFilter struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	RadiusKm float64 `json:"radius_km"`
}

// RangeFilter is an inclusive numeric range; either bound may be absent.
type RangeFilter struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// PreferencesDTO carries soft ranking hints.
type PreferencesDTO struct {
	City         string `json:"city,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	Rooms        int    `json:"rooms,omitempty"`
}

// SearchResponse is the POST /search reply.
type SearchResponse struct {
	Results []ListingItem `json:"results"`
	Count   int           `json:"count"`
}

// ListingItem is one returned listing.
type ListingItem struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ErrorResponse is the error payload for every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	codeBadRequest    = "bad_request"
	codeInvalidQuery  = "invalid_query"
	codeUnauthorized  = "unauthorized"
	codeInternalError = "internal_error"
)

func queryParamsFromRequest(req SearchRequest) query.Params {
	p := query.Params{
		Text:          req.Query,
		Mode:          mode.Mode(req.Mode),
		K:             req.K,
		FetchK:        req.FetchK,
		SortBy:        req.SortBy,
		SortDirection: query.SortDirection(req.SortDirection),
		EnergyCerts:   req.EnergyCerts,
		Strategy:      strategy.Strategy(req.Strategy),
	}

	if req.Geo != nil {
		p.Geo = &query.GeoCircle{Lat: req.Geo.Lat, Lon: req.Geo.Lon, RadiusKm: req.Geo.RadiusKm}
	}
	if req.PriceRange != nil {
		p.PriceRange = query.Range{Min: req.PriceRange.Min, Max: req.PriceRange.Max}
	}
	if req.YearBuilt != nil {
		p.YearBuilt = query.Range{Min: req.YearBuilt.Min, Max: req.YearBuilt.Max}
	}
	if req.Preferences != nil {
		p.Preferences = query.Preferences{
			City:         req.Preferences.City,
			PropertyType: req.Preferences.PropertyType,
			Rooms:        req.Preferences.Rooms,
		}
	}
	if len(req.Filters) > 0 {
		p.ForcedFilters = filters.Map(req.Filters)
	}

	return p
}

func listingToItem(l listing.Listing) ListingItem {
	return ListingItem{
		ID:         l.ID(),
		Content:    l.Content(),
		Attributes: l.Attrs(),
	}
}
