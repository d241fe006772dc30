// Package visualization renders label slices with region-of-interest overlays
// for visual inspection of centre and peripheral regions.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"liverroi/pkg/volume"
)

// Gray levels used for each label
var labelGray = map[volume.Label]uint8{
	volume.Background: 0x00,
	volume.Liver:      0x80,
	volume.Tumor:      0xC0,
	volume.Boundary:   0xFF,
}

// Layer is one region drawn on top of a slice
type Layer struct {
	// Name is used for logging only
	Name string

	// Center is framed when it lies on the rendered slice
	Center volume.Coord

	// Points are filled when they lie on the rendered slice
	Points []volume.Coord
}

// Viewer renders axial slices of a labelled volume
type Viewer struct {
	grid volume.Grid

	// scale is the number of output pixels per voxel along each axis
	scale int
}

// NewViewer creates a viewer. scale values below 1 are treated as 1.
func NewViewer(g volume.Grid, scale int) *Viewer {
	if scale < 1 {
		scale = 1
	}
	return &Viewer{grid: g, scale: scale}
}

// ExtractSlice renders slice z as a grayscale image, one gray level per label
func (v *Viewer) ExtractSlice(z int) (*image.Gray, error) {
	s := v.grid.Shape()
	if z < 0 || z >= s.Depth {
		return nil, fmt.Errorf("slice %d outside depth %d", z, s.Depth)
	}

	img := image.NewGray(image.Rect(0, 0, s.Width*v.scale, s.Height*v.scale))
	for h := 0; h < s.Height; h++ {
		for w := 0; w < s.Width; w++ {
			g := color.Gray{Y: labelGray[v.grid.At(volume.Coord{Z: z, H: h, W: w})]}
			for dy := 0; dy < v.scale; dy++ {
				for dx := 0; dx < v.scale; dx++ {
					img.SetGray(w*v.scale+dx, h*v.scale+dy, g)
				}
			}
		}
	}
	return img, nil
}

// RenderOverlay draws slice z with every layer in its own colour
func (v *Viewer) RenderOverlay(z int, layers []Layer) (image.Image, error) {
	base, err := v.ExtractSlice(z)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContextForImage(base)
	if len(layers) == 0 {
		return dc.Image(), nil
	}

	palette := colorful.FastHappyPalette(len(layers))
	cell := float64(v.scale)
	for i, layer := range layers {
		c := palette[i]

		dc.SetRGBA(c.R, c.G, c.B, 0.45)
		for _, p := range layer.Points {
			if p.Z != z {
				continue
			}
			dc.DrawRectangle(float64(p.W)*cell, float64(p.H)*cell, cell, cell)
		}
		dc.Fill()

		if layer.Center.Z == z {
			dc.SetRGB(c.R, c.G, c.B)
			v.drawMarker(dc, layer.Center)
			dc.Fill()
		}
	}
	return dc.Image(), nil
}

// drawMarker adds a square frame around the 3x3 cells centred on c. The frame
// is built from filled rectangles on pixel boundaries so it never spreads past
// those cells.
func (v *Viewer) drawMarker(dc *gg.Context, c volume.Coord) {
	cell := float64(v.scale)
	t := math.Max(1, math.Floor(cell/4))
	x0, y0 := float64(c.W-1)*cell, float64(c.H-1)*cell
	size := 3 * cell

	dc.DrawRectangle(x0, y0, size, t)
	dc.DrawRectangle(x0, y0+size-t, size, t)
	dc.DrawRectangle(x0, y0, t, size)
	dc.DrawRectangle(x0+size-t, y0, t, size)
}

// SaveSlice writes img as PNG when filename ends in .png and as JPEG otherwise
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filename), ".png") {
		return png.Encode(file, img)
	}
	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}
