package volume

// FillBackgroundHollow removes background voids enclosed by foreground so the
// volume satisfies the precondition of the centre finder.
//
// The six outer faces of the volume are first forced to Background. Then, on
// every slice, the 4-connected background regions are collected and all but the
// largest are relabelled as Liver. Forcing the faces guarantees that the region
// touching the slice border is the one kept.
//
// It reports whether any slice had more than one background region.
func (v *LabelVolume) FillBackgroundHollow() bool {
	if v.shape.Len() == 0 {
		return false
	}
	v.clearFaces()

	changed := false
	for z := 0; z < v.shape.Depth; z++ {
		if v.fillSliceHollow(z) {
			changed = true
		}
	}
	return changed
}

func (v *LabelVolume) clearFaces() {
	s := v.shape
	last := Coord{Z: s.Depth, H: s.Height, W: s.Width}
	v.Fill(Coord{}, Coord{Z: 1, H: s.Height, W: s.Width}, Background)
	v.Fill(Coord{Z: s.Depth - 1}, last, Background)
	v.Fill(Coord{}, Coord{Z: s.Depth, H: 1, W: s.Width}, Background)
	v.Fill(Coord{H: s.Height - 1}, last, Background)
	v.Fill(Coord{}, Coord{Z: s.Depth, H: s.Height, W: 1}, Background)
	v.Fill(Coord{W: s.Width - 1}, last, Background)
}

// fillSliceHollow handles one slice. Regions are discovered in row-major order
// and the first region of maximal size is kept.
func (v *LabelVolume) fillSliceHollow(z int) bool {
	h, w := v.shape.Height, v.shape.Width
	plane := v.Slice(z)
	region := make([]int, len(plane))
	for i := range region {
		region[i] = -1
	}

	var areas [][]int
	queue := make([]int, 0, 64)
	for start, l := range plane {
		if !l.IsBackground() || region[start] >= 0 {
			continue
		}
		id := len(areas)
		var area []int
		region[start] = id
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			area = append(area, cur)

			ch, cw := cur/w, cur%w
			for _, n := range [4][2]int{{ch - 1, cw}, {ch + 1, cw}, {ch, cw - 1}, {ch, cw + 1}} {
				if n[0] < 0 || n[0] >= h || n[1] < 0 || n[1] >= w {
					continue
				}
				ni := n[0]*w + n[1]
				if region[ni] < 0 && plane[ni].IsBackground() {
					region[ni] = id
					queue = append(queue, ni)
				}
			}
		}
		areas = append(areas, area)
	}

	if len(areas) <= 1 {
		return false
	}
	keep := 0
	for i, a := range areas {
		if len(a) > len(areas[keep]) {
			keep = i
		}
	}
	for i, a := range areas {
		if i == keep {
			continue
		}
		for _, p := range a {
			plane[p] = Liver
		}
	}
	return true
}
