// Package morph locates the morphological centre of the liver in a labelled
// volume by peeling its surface layer by layer until a single layer remains.
//
// Erosion can be isotropic, where every round removes one voxel layer along all
// three axes, or anisotropic, where rounds along the finer axis are interleaved
// with full rounds so that the surface retreats at the same rate in millimetres
// on every axis.
//
// The volume must not contain background voids fully enclosed by foreground;
// volume.LabelVolume.FillBackgroundHollow establishes this.
package morph

import (
	"fmt"
	"sort"

	"liverroi/pkg/volume"
)

// Round records one completed erosion round.
type Round struct {
	// Eroded is the number of voxels removed in the round.
	Eroded int

	// Restricted is set for rounds that only removed voxels exposed along the
	// finer axis.
	Restricted bool
}

// Trace describes a full centre search.
type Trace struct {
	// Foreground is the number of liver and tumor voxels found by the seeding
	// scan.
	Foreground int

	// Rounds lists every round before the last one.
	Rounds []Round

	// Final holds the voxels of the last round in row-major order. They are
	// equidistant from the surface; the first is the centre.
	Final []volume.Coord

	// Center is Final[0].
	Center volume.Coord
}

// Eroded is the number of voxels removed across all completed rounds.
func (t Trace) Eroded() int {
	n := 0
	for _, r := range t.Rounds {
		n += r.Eroded
	}
	return n
}

// FindCenter returns the morphological centre of the liver and tumor voxels of
// g. The result is stable: repeated calls on the same volume return the same
// voxel. It returns false when g has no foreground.
//
// With anisotropic set, g must have equal height and width spacing.
func FindCenter(g volume.Grid, anisotropic bool) (volume.Coord, bool) {
	tr, ok := Erode(g, anisotropic)
	return tr.Center, ok
}

// Erode runs the centre search and reports every round.
func Erode(g volume.Grid, anisotropic bool) (Trace, bool) {
	sched := newSchedule(g.Spacing(), anisotropic)

	st, cur, remaining := seed(g)
	if remaining == 0 {
		return Trace{}, false
	}
	tr := Trace{Foreground: remaining}

	for {
		if len(cur) == 0 {
			panic(fmt.Sprintf("morph: erosion stalled with %d foreground voxels and no surface; "+
				"the foreground must border background somewhere", remaining))
		}
		shield := sched.next()
		eroded, next := erodeRound(st, cur, shield)

		if len(eroded) == remaining {
			tr.Final = decode(st.shape, eroded)
			tr.Center = tr.Final[0]
			return tr, true
		}

		tr.Rounds = append(tr.Rounds, Round{Eroded: len(eroded), Restricted: shield != nil})
		st.retire(eroded)
		remaining -= len(eroded)
		cur = next
	}
}

// neighbourFunc enumerates the in-bounds neighbours of c along some axes.
type neighbourFunc func(s volume.Shape, c volume.Coord, dst []volume.Coord) []volume.Coord

// erodeRound consumes the frontier cur and returns the voxels it erodes together
// with the frontier for the following round. The store is marked visited for
// every eroded voxel but their classification is left untouched; the caller
// retires them once it knows erosion continues.
//
// A nil shield erodes every unvisited candidate. Otherwise a candidate whose
// shield neighbours are all still foreground is deferred to the next frontier.
func erodeRound(st *store, cur frontier, shield neighbourFunc) ([]int, frontier) {
	next := newFrontier(len(cur))
	eroded := make([]int, 0, len(cur))

	var buf []volume.Coord
	for i := range cur {
		if st.isVisited(i) {
			continue
		}
		c := st.shape.Coord(i)

		if shield != nil {
			buf = shield(st.shape, c, buf[:0])
			if st.allForeground(buf) {
				next.add(i)
				continue
			}
		}

		st.setVisited(i)
		eroded = append(eroded, i)

		buf = volume.Diamond(st.shape, c, buf[:0])
		for _, n := range buf {
			k := st.key(n)
			if !st.isVisited(k) && st.isForeground(k) {
				next.add(k)
			}
		}
	}
	return eroded, next
}

func (s *store) allForeground(cs []volume.Coord) bool {
	for _, c := range cs {
		if !s.isForeground(s.key(c)) {
			return false
		}
	}
	return true
}

func decode(shape volume.Shape, idx []int) []volume.Coord {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	// Row-major index order is Coord.Less order.
	sort.Ints(sorted)
	out := make([]volume.Coord, len(sorted))
	for i, k := range sorted {
		out[i] = shape.Coord(k)
	}
	return out
}

// schedule decides, round by round, whether to erode fully or only along the
// finer axis. Each round advances cur by the finer spacing; once it reaches the
// coarser spacing a full round is due and the coarser spacing is subtracted.
type schedule struct {
	step, barrier, cur float64
	shield             neighbourFunc
}

func newSchedule(sp volume.Spacing, anisotropic bool) *schedule {
	if !anisotropic {
		return &schedule{}
	}
	if sp.H != sp.W {
		panic(fmt.Sprintf("morph: anisotropic erosion needs equal in-plane spacing, got h=%g w=%g", sp.H, sp.W))
	}
	if !(sp.H > 0 && sp.Z > 0) {
		panic(fmt.Sprintf("morph: spacing must be positive, got z=%g h=%g", sp.Z, sp.H))
	}

	switch {
	case sp.H > sp.Z:
		// Slices are closer than pixels: between full rounds, peel along z only.
		return &schedule{step: sp.Z, barrier: sp.H, shield: volume.AlongZ}
	case sp.Z > sp.H:
		return &schedule{step: sp.H, barrier: sp.Z, shield: volume.InPlane}
	}
	return &schedule{}
}

// next returns the shield for the coming round, nil for a full round.
func (s *schedule) next() neighbourFunc {
	if s.shield == nil {
		return nil
	}
	s.cur += s.step
	if s.cur >= s.barrier {
		s.cur -= s.barrier
		return nil
	}
	return s.shield
}
