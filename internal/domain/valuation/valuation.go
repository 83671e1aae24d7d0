package valuation

// Status classifies an asking price against the estimated fair value.
type Status string

// Valuation status constants.
const (
	HighlyUndervalued Status = "highly_undervalued"
	Undervalued       Status = "undervalued"
	Fair              Status = "fair"
	Overvalued        Status = "overvalued"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	return s == HighlyUndervalued || s == Undervalued || s == Fair || s == Overvalued
}

// Estimate is the result of pricing a listing.
type Estimate struct {
	status Status
	value  float64
}

// NewEstimate creates a valuation estimate.
func NewEstimate(status Status, value float64) Estimate {
	return Estimate{status: status, value: value}
}

// Status returns the valuation classification.
func (e Estimate) Status() Status { return e.status }

// Value returns the estimated fair value.
func (e Estimate) Value() float64 { return e.value }
