package filters

// Map holds scalar equality constraints by attribute name. Range and set
// constraints are expressed on the query context, never in the map.
type Map map[string]any

// New creates an empty filter map.
func New() Map { return Map{} }

// Clone returns an independent copy.
func (m Map) Clone() Map {
	cp := make(Map, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Merge overlays forced constraints onto m, forced winning on key conflict.
// Neither input is mutated.
func (m Map) Merge(forced Map) Map {
	out := m.Clone()
	for k, v := range forced {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether the map has no constraints.
func (m Map) IsEmpty() bool { return len(m) == 0 }
