// Package roi extracts physically bounded regions of interest around a voxel.
//
// A region is the set of liver (and optionally tumor) voxels whose distance to
// the centre, measured in millimetres with the grid's per-axis spacing, does not
// exceed a radius. Regions are grown outward from the centre in order of
// distance; growth passes through background voxels so that a thin background
// gap does not cut the ball short, and the result is filtered to foreground at
// the end.
package roi

import (
	"container/heap"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"liverroi/pkg/volume"
)

// Dims selects between a spherical 3D region and a circular region on the
// centre's slice.
type Dims int

const (
	Dims2D Dims = 2
	Dims3D Dims = 3
)

func (d Dims) String() string {
	switch d {
	case Dims2D:
		return "2D"
	case Dims3D:
		return "3D"
	}
	return fmt.Sprintf("Dims(%d)", int(d))
}

// Extract returns the foreground voxels within radiusMM of center.
//
// In 3D the region grows through 6-connected neighbours and distance accounts
// for the spacing of all three axes. In 2D the region stays on center's slice,
// grows through 4-connected neighbours and uses in-plane spacing only.
//
// When includeTumor is false only liver voxels are returned. center need not be
// foreground. A negative radius, an out-of-bounds centre or an unknown Dims
// panics.
func Extract(g volume.Grid, center volume.Coord, radiusMM float64, includeTumor bool, dims Dims) Set {
	checkRadius(radiusMM)
	shape := g.Shape()
	if !shape.Contains(center) {
		panic(fmt.Sprintf("roi: centre %v outside volume %dx%dx%d", center, shape.Depth, shape.Height, shape.Width))
	}

	var neighbours func(volume.Shape, volume.Coord, []volume.Coord) []volume.Coord
	switch dims {
	case Dims3D:
		neighbours = volume.Diamond
	case Dims2D:
		neighbours = volume.InPlane
	default:
		panic(fmt.Sprintf("roi: unsupported dims %d", int(dims)))
	}

	sp := g.Spacing()
	origin := sp.Physical(center)
	dist2 := func(c volume.Coord) float64 {
		return r3.Norm2(r3.Sub(sp.Physical(c), origin))
	}
	limit := radiusMM * radiusMM

	visited := make(map[int]struct{}, 64)
	accepted := make([]volume.Coord, 0, 64)

	q := &voxelQueue{}
	heap.Push(q, queued{c: center, d2: 0})

	var buf []volume.Coord
	for q.Len() > 0 {
		item := heap.Pop(q).(queued)
		// Nothing left in the queue can be closer.
		if item.d2 > limit {
			break
		}
		key := shape.Index(item.c)
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		accepted = append(accepted, item.c)

		buf = neighbours(shape, item.c, buf[:0])
		for _, n := range buf {
			if _, seen := visited[shape.Index(n)]; !seen {
				heap.Push(q, queued{c: n, d2: dist2(n)})
			}
		}
	}

	out := make(Set, len(accepted))
	for _, c := range accepted {
		if isForeground(g.At(c), includeTumor) {
			out.Add(c)
		}
	}
	return out
}

func isForeground(l volume.Label, includeTumor bool) bool {
	if includeTumor {
		return l.IsLiverOrTumor()
	}
	return l.IsLiver()
}

type queued struct {
	c  volume.Coord
	d2 float64
}

// voxelQueue is a min-heap on squared distance.
type voxelQueue []queued

func (q voxelQueue) Len() int            { return len(q) }
func (q voxelQueue) Less(i, j int) bool  { return q[i].d2 < q[j].d2 }
func (q voxelQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *voxelQueue) Push(x interface{}) { *q = append(*q, x.(queued)) }
func (q *voxelQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
