package listing

import "testing"

func TestNumber_Coercion(t *testing.T) {
	l := New("a", "text", map[string]any{
		"price":  "450000",
		"area":   72.5,
		"rooms":  3,
		"bogus":  "not-a-number",
		"spaced": " 1200 ",
		"nilval": nil,
	})

	tests := []struct {
		name string
		attr string
		want float64
		ok   bool
	}{
		{"string number", "price", 450000, true},
		{"float", "area", 72.5, true},
		{"int", "rooms", 3, true},
		{"non numeric string", "bogus", 0, false},
		{"whitespace trimmed", "spaced", 1200, true},
		{"nil value", "nilval", 0, false},
		{"absent", "missing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.Number(tt.attr)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Number(%q) = (%v, %v), want (%v, %v)", tt.attr, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestInt_Truncates(t *testing.T) {
	l := New("a", "", map[string]any{"year_built": "1998.7"})
	got, ok := l.Int("year_built")
	if !ok || got != 1998 {
		t.Errorf("Int = (%d, %v), want (1998, true)", got, ok)
	}
}

func TestBool_OnlyBooleans(t *testing.T) {
	l := New("a", "", map[string]any{"has_parking": true, "has_garden": "yes"})

	if b, ok := l.Bool("has_parking"); !ok || !b {
		t.Errorf("Bool(has_parking) = (%v, %v), want (true, true)", b, ok)
	}
	if _, ok := l.Bool("has_garden"); ok {
		t.Error("Bool should not coerce strings")
	}
	if _, ok := l.Bool("missing"); ok {
		t.Error("Bool on absent attribute should report not ok")
	}
}

func TestCoordinates_Fallback(t *testing.T) {
	primary := New("a", "", map[string]any{"lat": 52.23, "lon": 21.01})
	if lat, lon, ok := primary.Coordinates(); !ok || lat != 52.23 || lon != 21.01 {
		t.Errorf("Coordinates = (%v, %v, %v)", lat, lon, ok)
	}

	fallback := New("b", "", map[string]any{"latitude": 50.06, "longitude": 19.94})
	if lat, lon, ok := fallback.Coordinates(); !ok || lat != 50.06 || lon != 19.94 {
		t.Errorf("Coordinates fallback = (%v, %v, %v)", lat, lon, ok)
	}

	partial := New("c", "", map[string]any{"lat": 52.23})
	if _, _, ok := partial.Coordinates(); ok {
		t.Error("Coordinates with missing longitude should report not ok")
	}
}

func TestNew_CopiesAttrs(t *testing.T) {
	attrs := map[string]any{"city": "Warsaw"}
	l := New("a", "", attrs)
	attrs["city"] = "Krakow"

	if got, _ := l.String("city"); got != "Warsaw" {
		t.Errorf("listing attrs mutated through caller map: %q", got)
	}
}
