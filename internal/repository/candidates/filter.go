package candidates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/propsearch/internal/domain/search/filters"
)

// buildPrefilter translates an equality filter map into an FT.SEARCH
// pre-filter string. String values become tag matches, bools become tag
// matches on "true"/"false", numbers become degenerate numeric ranges.
// Keys are emitted in sorted order so queries are deterministic.
func buildPrefilter(f filters.Map) string {
	if f.IsEmpty() {
		return ""
	}

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if p := buildClause(k, f[k]); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func buildClause(key string, value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(v))
	case bool:
		return fmt.Sprintf("@%s:{%t}", key, v)
	case float64:
		return fmt.Sprintf("@%s:[%g %g]", key, v, v)
	case float32:
		return fmt.Sprintf("@%s:[%g %g]", key, v, v)
	case int:
		return fmt.Sprintf("@%s:[%d %d]", key, v, v)
	case int64:
		return fmt.Sprintf("@%s:[%d %d]", key, v, v)
	default:
		return ""
	}
}

// escapeQuery escapes user text for the BM25 clause.
func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
