package volume

import "fmt"

// LabelVolume is an in-memory labelled scan stored row-major as a flat slice,
// the same layout the slice loader produces.
type LabelVolume struct {
	// Data holds one label per voxel, indexed by Shape.Index.
	Data []Label

	shape   Shape
	spacing Spacing
}

// NewLabelVolume allocates an all-background volume.
func NewLabelVolume(shape Shape, spacing Spacing) *LabelVolume {
	return &LabelVolume{
		Data:    make([]Label, shape.Len()),
		shape:   shape,
		spacing: spacing,
	}
}

// FromLabels wraps existing row-major label data. The length of data must match
// the shape.
func FromLabels(data []Label, shape Shape, spacing Spacing) (*LabelVolume, error) {
	if len(data) != shape.Len() {
		return nil, fmt.Errorf("label data has %d voxels, shape %dx%dx%d needs %d",
			len(data), shape.Depth, shape.Height, shape.Width, shape.Len())
	}
	return &LabelVolume{Data: data, shape: shape, spacing: spacing}, nil
}

// Shape implements Grid.
func (v *LabelVolume) Shape() Shape { return v.shape }

// Spacing implements Grid.
func (v *LabelVolume) Spacing() Spacing { return v.spacing }

// At implements Grid.
func (v *LabelVolume) At(c Coord) Label {
	return v.Data[v.shape.Index(c)]
}

// Get returns the label at c and whether c is inside the volume.
func (v *LabelVolume) Get(c Coord) (Label, bool) {
	if !v.shape.Contains(c) {
		return Background, false
	}
	return v.At(c), true
}

// Set writes a label. c must be inside the volume.
func (v *LabelVolume) Set(c Coord, l Label) {
	v.Data[v.shape.Index(c)] = l
}

// Fill writes l into the box [from, to) clipped to the volume.
func (v *LabelVolume) Fill(from, to Coord, l Label) {
	for z := max(from.Z, 0); z < min(to.Z, v.shape.Depth); z++ {
		for h := max(from.H, 0); h < min(to.H, v.shape.Height); h++ {
			for w := max(from.W, 0); w < min(to.W, v.shape.Width); w++ {
				v.Data[v.shape.Index(Coord{Z: z, H: h, W: w})] = l
			}
		}
	}
}

// Clone returns a deep copy.
func (v *LabelVolume) Clone() *LabelVolume {
	data := make([]Label, len(v.Data))
	copy(data, v.Data)
	return &LabelVolume{Data: data, shape: v.shape, spacing: v.spacing}
}

// Count returns the number of voxels matching pred.
func (v *LabelVolume) Count(pred func(Label) bool) int {
	n := 0
	for _, l := range v.Data {
		if pred(l) {
			n++
		}
	}
	return n
}

// Slice returns the labels of slice z as a row-major H*W view into Data.
func (v *LabelVolume) Slice(z int) []Label {
	plane := v.shape.Height * v.shape.Width
	return v.Data[z*plane : (z+1)*plane]
}
