package scored

import "github.com/kailas-cloud/propsearch/internal/domain/listing"

// Scored carries a listing together with its relevance score through the
// pipeline. Filtering stages must copy pairs as-is: a surviving listing
// keeps its score unchanged, and no stage may invent a score for a listing
// it did not score.
type Scored struct {
	listing listing.Listing
	score   float64
}

// New creates a scored listing.
func New(l listing.Listing, score float64) Scored {
	return Scored{listing: l, score: score}
}

// Listing returns the candidate record.
func (s Scored) Listing() listing.Listing { return s.listing }

// Score returns the relevance score.
func (s Scored) Score() float64 { return s.score }

// WithScore returns a copy carrying a new score.
func (s Scored) WithScore(score float64) Scored {
	return Scored{listing: s.listing, score: score}
}

// Listings strips scores, preserving order.
func Listings(items []Scored) []listing.Listing {
	out := make([]listing.Listing, len(items))
	for i, s := range items {
		out[i] = s.Listing()
	}
	return out
}
