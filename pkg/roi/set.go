package roi

import (
	"sort"

	"liverroi/pkg/volume"
)

// Set is an unordered set of voxel coordinates.
type Set map[volume.Coord]struct{}

// NewSet builds a set from coordinates.
func NewSet(cs ...volume.Coord) Set {
	s := make(Set, len(cs))
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

// Add inserts c.
func (s Set) Add(c volume.Coord) { s[c] = struct{}{} }

// Contains reports whether c is in s.
func (s Set) Contains(c volume.Coord) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of voxels in s.
func (s Set) Len() int { return len(s) }

// SubsetOf reports whether every element of s is in o.
func (s Set) SubsetOf(o Set) bool {
	if len(s) > len(o) {
		return false
	}
	for c := range s {
		if !o.Contains(c) {
			return false
		}
	}
	return true
}

// Sorted returns the elements in row-major order.
func (s Set) Sorted() []volume.Coord {
	out := make([]volume.Coord, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
