package extract

import (
	"strings"

	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
)

// cityVocabulary is the fixed set of recognized cities; first match wins.
var cityVocabulary = []string{"warsaw", "krakow", "gdansk", "wroclaw", "poznan"}

var (
	parkingKeywords = []string{"parking", "garage"}
	rentKeywords    = []string{"rent", "rental", "for rent", "lease", "wynajem"}
	saleKeywords    = []string{"sale", "for sale", "buy", "purchase", "sprzedaż"}
)

// Constraints derives a filter map from free query text by keyword
// spotting. Deterministic and pure; attributes with no matching keyword
// stay absent rather than false.
func Constraints(text string) filters.Map {
	out := filters.New()
	lower := strings.ToLower(text)

	for _, city := range cityVocabulary {
		if strings.Contains(lower, city) {
			out["city"] = titleCase(city)
			break
		}
	}

	if containsAny(lower, parkingKeywords) {
		out["has_parking"] = true
	}
	if strings.Contains(lower, "garden") {
		out["has_garden"] = true
	}
	if strings.Contains(lower, "pool") {
		out["has_pool"] = true
	}

	// Rent phrases are checked before sale phrases.
	if containsAny(lower, rentKeywords) {
		out["listing_type"] = "rent"
	} else if containsAny(lower, saleKeywords) {
		out["listing_type"] = "sale"
	}

	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
