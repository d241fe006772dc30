// Package volume provides the labelled voxel grid consumed by the centre finder
// and the ROI extractor. A grid is addressed by (Z, H, W): Z is the slice index,
// H the row within a slice and W the column. Every axis carries its own physical
// spacing in millimetres.
package volume

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Label is a segmentation label as stored in a labelled scan.
type Label uint8

const (
	// Background is everything that is neither liver nor tumor.
	Background Label = 0

	// Liver marks liver parenchyma.
	Liver Label = 1

	// Tumor marks a lesion inside the liver.
	Tumor Label = 2

	// Boundary is reserved for liver-edge annotations.
	Boundary Label = 3
)

// IsLiver reports whether l is liver.
func (l Label) IsLiver() bool { return l == Liver }

// IsTumor reports whether l is tumor.
func (l Label) IsTumor() bool { return l == Tumor }

// IsLiverOrTumor reports whether l belongs to the foreground used for erosion.
func (l Label) IsLiverOrTumor() bool { return l == Liver || l == Tumor }

// IsBackground reports whether l is the background label.
func (l Label) IsBackground() bool { return l == Background }

// Coord addresses one voxel.
type Coord struct {
	Z, H, W int
}

// Less orders coordinates row-major: by Z, then H, then W. This is the order
// used to break ties when several voxels qualify as the centre, and it does not
// depend on how a coordinate is encoded internally.
func (c Coord) Less(o Coord) bool {
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	if c.H != o.H {
		return c.H < o.H
	}
	return c.W < o.W
}

// Add returns c shifted by the given offsets.
func (c Coord) Add(dz, dh, dw int) Coord {
	return Coord{Z: c.Z + dz, H: c.H + dh, W: c.W + dw}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.Z, c.H, c.W)
}

// Spacing is the physical size of a voxel along each axis, in mm.
type Spacing struct {
	Z, H, W float64
}

// Physical returns the position of c in millimetres. X follows W, Y follows H
// and Z follows the slice axis.
func (s Spacing) Physical(c Coord) r3.Vec {
	return r3.Vec{
		X: float64(c.W) * s.W,
		Y: float64(c.H) * s.H,
		Z: float64(c.Z) * s.Z,
	}
}

// Isotropic reports whether all three spacings are equal.
func (s Spacing) Isotropic() bool {
	return s.Z == s.H && s.Z == s.W
}

// VoxelVolume is the volume of a single voxel in mm³.
func (s Spacing) VoxelVolume() float64 {
	return s.Z * s.H * s.W
}

// PixelArea is the in-plane area of a voxel in mm².
func (s Spacing) PixelArea() float64 {
	return s.H * s.W
}

// Validate checks that every spacing is strictly positive.
func (s Spacing) Validate() error {
	if s.Z <= 0 || s.H <= 0 || s.W <= 0 {
		return fmt.Errorf("spacing must be positive, got z=%g h=%g w=%g", s.Z, s.H, s.W)
	}
	return nil
}

// Shape is the extent of a grid in voxels.
type Shape struct {
	Depth, Height, Width int
}

// Len is the number of voxels in the grid.
func (s Shape) Len() int { return s.Depth * s.Height * s.Width }

// Contains reports whether c lies inside the grid.
func (s Shape) Contains(c Coord) bool {
	return c.Z >= 0 && c.Z < s.Depth &&
		c.H >= 0 && c.H < s.Height &&
		c.W >= 0 && c.W < s.Width
}

// Index encodes c as its row-major offset. c must be inside the grid.
func (s Shape) Index(c Coord) int {
	return (c.Z*s.Height+c.H)*s.Width + c.W
}

// Coord decodes a row-major offset produced by Index.
func (s Shape) Coord(i int) Coord {
	plane := s.Height * s.Width
	return Coord{Z: i / plane, H: (i % plane) / s.Width, W: i % s.Width}
}

// Grid is the read-only view of a labelled volume needed by the morphology and
// ROI code.
type Grid interface {
	// Shape returns the extent of the grid.
	Shape() Shape

	// At returns the label at c. c must be inside the grid.
	At(c Coord) Label

	// Spacing returns the per-axis voxel size in mm.
	Spacing() Spacing
}

var (
	diamondOffsets = [6]Coord{
		{Z: -1}, {Z: 1},
		{H: -1}, {H: 1},
		{W: -1}, {W: 1},
	}
	zOffsets     = [2]Coord{{Z: -1}, {Z: 1}}
	planeOffsets = [4]Coord{{H: -1}, {H: 1}, {W: -1}, {W: 1}}
)

func appendNeighbours(s Shape, c Coord, offsets []Coord, dst []Coord) []Coord {
	for _, o := range offsets {
		n := Coord{Z: c.Z + o.Z, H: c.H + o.H, W: c.W + o.W}
		if s.Contains(n) {
			dst = append(dst, n)
		}
	}
	return dst
}

// Diamond appends the in-bounds 6-connected neighbours of c to dst.
func Diamond(s Shape, c Coord, dst []Coord) []Coord {
	return appendNeighbours(s, c, diamondOffsets[:], dst)
}

// AlongZ appends the in-bounds neighbours of c on the adjacent slices to dst.
func AlongZ(s Shape, c Coord, dst []Coord) []Coord {
	return appendNeighbours(s, c, zOffsets[:], dst)
}

// InPlane appends the in-bounds 4-connected neighbours of c on its own slice to
// dst.
func InPlane(s Shape, c Coord, dst []Coord) []Coord {
	return appendNeighbours(s, c, planeOffsets[:], dst)
}
