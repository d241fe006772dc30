package roi

import (
	"fmt"
	"math"

	"liverroi/pkg/morph"
	"liverroi/pkg/sector"
	"liverroi/pkg/volume"
)

// Peripheral regions are always returned in this order.
const (
	Anterior = iota
	Posterior
	Lateral
)

// RegionNames names the entries of peripheral results.
var RegionNames = [3]string{"anterior", "posterior", "lateral"}

// PeripheralCenters offsets center towards the anterior, posterior and lateral
// edges of the liver. For each direction of the pattern it walks from center
// across its slice while the voxels stay liver or tumor, then moves center by
// round(alpha * steps) voxels along that direction.
//
// If the liver reaches the edge of the grid the offset is capped so the result
// stays inside the grid. An invalid pattern or alpha outside [0, 1] panics.
func PeripheralCenters(g volume.Grid, center volume.Coord, p sector.Pattern, alpha float64) [3]volume.Coord {
	checkAlpha(alpha)
	shape := g.Shape()
	if !shape.Contains(center) {
		panic(fmt.Sprintf("roi: centre %v outside volume", center))
	}

	var out [3]volume.Coord
	for i, d := range p.UnitVectors() {
		steps := walk(g, center, d)
		k := int(math.Round(alpha * float64(steps)))
		for k > 0 && !shape.Contains(d.Step(center, k)) {
			k--
		}
		out[i] = d.Step(center, k)
	}
	return out
}

// walk counts how many voxels from c along d, c included, are liver or tumor.
func walk(g volume.Grid, c volume.Coord, d sector.Direction) int {
	shape := g.Shape()
	steps := 0
	for pos := c; shape.Contains(pos) && g.At(pos).IsLiverOrTumor(); pos = d.Step(pos, 1) {
		steps++
	}
	return steps
}

// PeripheralROI extracts the three peripheral regions around an explicit
// centre. center must be inside the grid and liver or tumor; radiusMM must be
// non-negative and alpha within [0, 1]. Violations panic.
func PeripheralROI(g volume.Grid, center volume.Coord, p sector.Pattern, radiusMM, alpha float64,
	includeTumor bool, dims Dims) [3]Set {
	if !g.Shape().Contains(center) || !g.At(center).IsLiverOrTumor() {
		panic(fmt.Sprintf("roi: centre %v is not a liver or tumor voxel", center))
	}
	checkRadius(radiusMM)
	checkAlpha(alpha)

	var out [3]Set
	for i, c := range PeripheralCenters(g, center, p, alpha) {
		out[i] = Extract(g, c, radiusMM, includeTumor, dims)
	}
	return out
}

// PeripheralROIAuto finds the centre with morph.FindCenter and extracts the
// three peripheral regions around it. With no foreground it returns three empty
// sets and false.
func PeripheralROIAuto(g volume.Grid, p sector.Pattern, radiusMM, alpha float64,
	anisotropic, includeTumor bool, dims Dims) (volume.Coord, [3]Set, bool) {
	checkRadius(radiusMM)
	checkAlpha(alpha)

	center, ok := morph.FindCenter(g, anisotropic)
	if !ok {
		return volume.Coord{}, [3]Set{{}, {}, {}}, false
	}
	return center, PeripheralROI(g, center, p, radiusMM, alpha, includeTumor, dims), true
}

// CenterROI finds the centre with morph.FindCenter and extracts the region
// around it. With no foreground it returns an empty set and false.
func CenterROI(g volume.Grid, radiusMM float64, anisotropic, includeTumor bool, dims Dims) (volume.Coord, Set, bool) {
	checkRadius(radiusMM)

	center, ok := morph.FindCenter(g, anisotropic)
	if !ok {
		return volume.Coord{}, Set{}, false
	}
	return center, Extract(g, center, radiusMM, includeTumor, dims), true
}

func checkRadius(r float64) {
	if !(r >= 0) {
		panic(fmt.Sprintf("roi: radius must be non-negative, got %g", r))
	}
}

func checkAlpha(alpha float64) {
	if !(alpha >= 0 && alpha <= 1) {
		panic(fmt.Sprintf("roi: alpha must be within [0, 1], got %g", alpha))
	}
}
