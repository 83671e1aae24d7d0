package valuation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/propsearch/internal/domain"
	"github.com/kailas-cloud/propsearch/internal/domain/listing"
	domval "github.com/kailas-cloud/propsearch/internal/domain/valuation"
)

// Ratio thresholds classifying asking price against the fair estimate.
const (
	highlyUndervaluedBelow = 0.75
	undervaluedBelow       = 0.9
	fairUpTo               = 1.1
)

// Config holds per-city price baselines in currency units per square meter.
type Config struct {
	Baselines map[string]float64
	// DefaultBaseline prices listings in cities without their own baseline.
	DefaultBaseline float64
}

// ApplyDefaults fills a usable fallback baseline.
func (c *Config) ApplyDefaults() {
	if c.DefaultBaseline <= 0 {
		c.DefaultBaseline = 8000
	}
}

// Valuer estimates fair prices from city baselines and listing area. It is
// deliberately simple: the strategy layer only needs a coarse
// under/over classification, not an appraisal.
type Valuer struct {
	cfg Config
}

// New creates a baseline valuer.
func New(cfg Config) *Valuer {
	cfg.ApplyDefaults()
	return &Valuer{cfg: cfg}
}

// PriceEstimate classifies the listing's asking price. It fails when the
// price or area attribute is missing or unreadable.
func (v *Valuer) PriceEstimate(_ context.Context, l listing.Listing) (domval.Estimate, error) {
	price, ok := l.Number("price")
	if !ok || price <= 0 {
		return domval.Estimate{}, fmt.Errorf("%w: listing %s has no usable price", domain.ErrValuationUnavailable, l.ID())
	}
	area, ok := l.Number("area")
	if !ok || area <= 0 {
		return domval.Estimate{}, fmt.Errorf("%w: listing %s has no usable area", domain.ErrValuationUnavailable, l.ID())
	}

	fair := v.baselineFor(l) * area
	ratio := price / fair

	var status domval.Status
	switch {
	case ratio < highlyUndervaluedBelow:
		status = domval.HighlyUndervalued
	case ratio < undervaluedBelow:
		status = domval.Undervalued
	case ratio <= fairUpTo:
		status = domval.Fair
	default:
		status = domval.Overvalued
	}

	return domval.NewEstimate(status, fair), nil
}

func (v *Valuer) baselineFor(l listing.Listing) float64 {
	if city, ok := l.String("city"); ok {
		if b, found := v.cfg.Baselines[strings.ToLower(city)]; found && b > 0 {
			return b
		}
	}
	return v.cfg.DefaultBaseline
}
