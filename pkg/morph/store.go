package morph

import "liverroi/pkg/volume"

// elemType is the binary classification used during erosion.
type elemType uint8

const (
	elemBackground elemType = iota
	elemForeground
)

// classify maps a label to its erosion class. Liver and tumor are both
// foreground.
func classify(l volume.Label) elemType {
	if l.IsLiverOrTumor() {
		return elemForeground
	}
	return elemBackground
}

// frontier is a set of candidate surface voxels keyed by row-major index.
type frontier map[int]struct{}

func newFrontier(capacity int) frontier {
	return make(frontier, capacity)
}

func (f frontier) add(i int) { f[i] = struct{}{} }

// store is the bookkeeping of a single centre search. It shadows the labels of
// the voxels touched by the seeding scan and is mutated round by round; the
// grid itself is never written.
//
// A visited voxel is always Background once its round completes, and a voxel in
// a frontier was unvisited and Foreground when it was inserted.
type store struct {
	shape   volume.Shape
	class   map[int]elemType
	visited map[int]struct{}
}

func newStore(shape volume.Shape) *store {
	return &store{
		shape:   shape,
		class:   make(map[int]elemType, 4096),
		visited: make(map[int]struct{}, 4096),
	}
}

func (s *store) key(c volume.Coord) int { return s.shape.Index(c) }

func (s *store) setForeground(i int) { s.class[i] = elemForeground }

func (s *store) setBackground(i int) { s.class[i] = elemBackground }

// isForeground treats voxels the scan never touched as background.
func (s *store) isForeground(i int) bool {
	return s.class[i] == elemForeground
}

func (s *store) setVisited(i int) { s.visited[i] = struct{}{} }

func (s *store) isVisited(i int) bool {
	_, ok := s.visited[i]
	return ok
}

// retire reclassifies the voxels eroded in a round as background.
func (s *store) retire(eroded []int) {
	for _, i := range eroded {
		s.setBackground(i)
	}
}
