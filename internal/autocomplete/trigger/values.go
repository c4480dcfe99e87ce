package trigger

// ValueSet is an ordered set of candidate strings.
// Iteration order is insertion order; duplicates are dropped on construction.
// The set performs no normalization: hosts supply lowercase, prefix-free
// values.
type ValueSet struct {
	items []string
	index map[string]struct{}
}

// NewValueSet creates a set from values, keeping the first occurrence of
// each distinct string.
func NewValueSet(values ...string) *ValueSet {
	s := &ValueSet{
		items: make([]string, 0, len(values)),
		index: make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		if _, ok := s.index[v]; ok {
			continue
		}
		s.index[v] = struct{}{}
		s.items = append(s.items, v)
	}
	return s
}

// Len returns the number of values.
func (s *ValueSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Contains reports whether v is in the set.
func (s *ValueSet) Contains(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Values returns a copy of the values in insertion order.
func (s *ValueSet) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Each calls fn for every value in order until fn returns false.
func (s *ValueSet) Each(fn func(v string) bool) {
	if s == nil {
		return
	}
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}
