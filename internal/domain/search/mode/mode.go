package mode

// Mode is the candidate retrieval strategy.
type Mode string

// Retrieval mode constants.
const (
	// MMR performs diversity-aware vector search (maximal marginal relevance).
	MMR        Mode = "mmr"
	Similarity Mode = "similarity"
	// Hybrid blends vector and keyword relevance with a configurable weight.
	Hybrid Mode = "hybrid"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == MMR || m == Similarity || m == Hybrid
}
