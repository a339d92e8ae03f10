package core

// Scope is an insertion-ordered mapping of names to values visible to a
// scenario's steps. The runner snapshots it into the scenario result at
// the point of failure so reporters can render the state that led there.
// It is used from the single run loop only and needs no locking.
type Scope struct {
	keys   []string
	values map[string]any
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Set stores a value, keeping first-set ordering for the key.
func (s *Scope) Set(key string, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value for key and whether it is present.
func (s *Scope) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Scope) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Len returns the number of stored values.
func (s *Scope) Len() int { return len(s.keys) }

// Keys returns the keys in insertion order.
func (s *Scope) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Map returns a copy of the scope as a plain map. Values are shared.
func (s *Scope) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Snapshot returns an independent copy of the scope. Values are shared;
// ordering and membership are not.
func (s *Scope) Snapshot() *Scope {
	snap := &Scope{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]any, len(s.values)),
	}
	copy(snap.keys, s.keys)
	for k, v := range s.values {
		snap.values[k] = v
	}
	return snap
}
