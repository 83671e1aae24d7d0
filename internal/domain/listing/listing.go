package listing

import (
	"strconv"
	"strings"
)

// Listing is a single property record returned by a candidate source:
// an opaque text body plus scalar attributes. Immutable within one query
// execution once retrieved.
type Listing struct {
	id      string
	content string
	attrs   map[string]any
}

// New creates a listing. The attribute map is copied so later mutation by
// the caller cannot leak into a running pipeline.
func New(id, content string, attrs map[string]any) Listing {
	cp := make(map[string]any, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return Listing{id: id, content: content, attrs: cp}
}

// ID returns the listing identifier.
func (l Listing) ID() string { return l.id }

// Content returns the listing text body.
func (l Listing) Content() string { return l.content }

// Attr returns the raw attribute value.
func (l Listing) Attr(name string) (any, bool) {
	v, ok := l.attrs[name]
	return v, ok
}

// Attrs returns a copy of the attribute map.
func (l Listing) Attrs() map[string]any {
	cp := make(map[string]any, len(l.attrs))
	for k, v := range l.attrs {
		cp[k] = v
	}
	return cp
}

// Number reads an attribute as float64. Numeric attributes may arrive as
// strings; coercion fails soft, so non-numeric input reads as absent.
func (l Listing) Number(name string) (float64, bool) {
	v, ok := l.attrs[name]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int reads an attribute as an integer, truncating fractional values.
func (l Listing) Int(name string) (int, bool) {
	f, ok := l.Number(name)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool reads an attribute as a boolean. Only true booleans report true;
// absent or differently typed attributes read as (false, false).
func (l Listing) Bool(name string) (bool, bool) {
	v, ok := l.attrs[name]
	if !ok || v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// String reads an attribute as a string.
func (l Listing) String(name string) (string, bool) {
	v, ok := l.attrs[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Coordinates reads the listing position from lat/lon, falling back to
// latitude/longitude.
func (l Listing) Coordinates() (lat, lon float64, ok bool) {
	lat, ok = l.Number("lat")
	if !ok {
		lat, ok = l.Number("latitude")
	}
	if !ok {
		return 0, 0, false
	}
	lon, ok = l.Number("lon")
	if !ok {
		lon, ok = l.Number("longitude")
	}
	if !ok {
		return 0, 0, false
	}
	return lat, lon, true
}
