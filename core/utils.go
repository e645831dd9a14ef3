package core

import (
	"sort"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// IDSet is a set of entity ids.
type IDSet map[int]struct{}

func NewIDSet(ids ...int) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Missing returns the sorted ids of `s` that are not in `other`.
func (s IDSet) Missing(other IDSet) []int {
	var ids []int
	for id := range s {
		if !other.Has(id) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Slice returns the sorted ids.
func (s IDSet) Slice() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
