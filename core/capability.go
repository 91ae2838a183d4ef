package core

import "sort"

// CapabilitySet is a closed, enumerable set of tags describing what kinds of
// subtasks an agent can satisfy. Matching is by set membership rather than
// free-text heuristics so selection stays deterministic and testable.
type CapabilitySet map[string]struct{}

// NewCapabilitySet builds a set from the given tags.
func NewCapabilitySet(tags ...string) CapabilitySet {
	s := make(CapabilitySet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the tag.
func (s CapabilitySet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// ContainsAll reports whether every tag of other is present in s.
func (s CapabilitySet) ContainsAll(other CapabilitySet) bool {
	for t := range other {
		if !s.Has(t) {
			return false
		}
	}
	return true
}

// Intersects reports whether the two sets share at least one tag.
func (s CapabilitySet) Intersects(other CapabilitySet) bool {
	for t := range other {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Add inserts the given tags.
func (s CapabilitySet) Add(tags ...string) {
	for _, t := range tags {
		s[t] = struct{}{}
	}
}

// Len returns the number of tags in the set.
func (s CapabilitySet) Len() int { return len(s) }

// Sorted returns the tags in lexicographic order for stable logging and
// serialization.
func (s CapabilitySet) Sorted() []string {
	tags := make([]string, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Clone returns an independent copy of the set.
func (s CapabilitySet) Clone() CapabilitySet {
	c := make(CapabilitySet, len(s))
	for t := range s {
		c[t] = struct{}{}
	}
	return c
}
