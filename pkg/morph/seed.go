package morph

import "liverroi/pkg/volume"

// seed scans the whole grid once. Every foreground voxel is recorded in the
// store and counted; every background diamond neighbour of a foreground voxel is
// recorded as background and makes that voxel part of the initial frontier.
func seed(g volume.Grid) (*store, frontier, int) {
	shape := g.Shape()
	st := newStore(shape)
	surface := newFrontier(1024)
	total := 0

	var neigh []volume.Coord
	for i := 0; i < shape.Len(); i++ {
		c := shape.Coord(i)
		if classify(g.At(c)) != elemForeground {
			continue
		}
		total++
		st.setForeground(i)

		isSurface := false
		neigh = volume.Diamond(shape, c, neigh[:0])
		for _, n := range neigh {
			if classify(g.At(n)) == elemBackground {
				isSurface = true
				st.setBackground(st.key(n))
			}
		}
		if isSurface {
			surface.add(i)
		}
	}
	return st, surface, total
}

// Erodible reports whether the centre search can run on g: either g has no
// liver or tumor, or at least one such voxel has a background diamond neighbour
// inside the grid. Erode panics on grids for which it returns false.
func Erodible(g volume.Grid) bool {
	shape := g.Shape()
	found := false

	var neigh []volume.Coord
	for i := 0; i < shape.Len(); i++ {
		c := shape.Coord(i)
		if classify(g.At(c)) != elemForeground {
			continue
		}
		found = true
		neigh = volume.Diamond(shape, c, neigh[:0])
		for _, n := range neigh {
			if classify(g.At(n)) == elemBackground {
				return true
			}
		}
	}
	return !found
}
