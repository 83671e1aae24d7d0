package strategy

// Strategy is a named bias profile applied after base reranking.
type Strategy string

// Ranking strategy constants.
const (
	// Balanced applies no second-pass bias.
	Balanced Strategy = "balanced"
	Investor Strategy = "investor"
	Family   Strategy = "family"
	Bargain  Strategy = "bargain"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Balanced || s == Investor || s == Family || s == Bargain
}
