package visualization

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"liverroi/pkg/volume"
)

// createTestVolume returns a 2x4x5 volume with one voxel of every label on
// slice 1
func createTestVolume() *volume.LabelVolume {
	v := volume.NewLabelVolume(volume.Shape{Depth: 2, Height: 4, Width: 5}, volume.Spacing{Z: 1, H: 1, W: 1})
	v.Set(volume.Coord{Z: 1, H: 1, W: 1}, volume.Liver)
	v.Set(volume.Coord{Z: 1, H: 2, W: 3}, volume.Tumor)
	v.Set(volume.Coord{Z: 1, H: 3, W: 4}, volume.Boundary)
	return v
}

func TestNewViewer(t *testing.T) {
	v := NewViewer(createTestVolume(), 0)
	if v.scale != 1 {
		t.Errorf("Expected scale 1 for non-positive input, got %d", v.scale)
	}
}

func TestExtractSlice(t *testing.T) {
	viewer := NewViewer(createTestVolume(), 2)

	img, err := viewer.ExtractSlice(1)
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 8 {
		t.Fatalf("Slice is %dx%d, want 10x8", b.Dx(), b.Dy())
	}

	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0x00},
		{2, 2, 0x80},
		{3, 3, 0x80},
		{6, 4, 0xC0},
		{9, 7, 0xFF},
	}
	for _, tt := range tests {
		if got := img.GrayAt(tt.x, tt.y).Y; got != tt.want {
			t.Errorf("Pixel (%d, %d) = %#x, want %#x", tt.x, tt.y, got, tt.want)
		}
	}

	for _, z := range []int{-1, 2} {
		if _, err := viewer.ExtractSlice(z); err == nil {
			t.Errorf("Expected error for slice %d", z)
		}
	}
}

func TestRenderOverlay(t *testing.T) {
	vol := createTestVolume()
	viewer := NewViewer(vol, 4)

	layers := []Layer{
		{Name: "center", Center: volume.Coord{Z: 1, H: 1, W: 1}, Points: []volume.Coord{{Z: 1, H: 1, W: 1}}},
		// Points on another slice are not drawn
		{Name: "other", Center: volume.Coord{Z: 0, H: 3, W: 0}, Points: []volume.Coord{{Z: 0, H: 3, W: 0}}},
	}
	img, err := viewer.RenderOverlay(1, layers)
	if err != nil {
		t.Fatalf("RenderOverlay failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 16 {
		t.Fatalf("Overlay is %dx%d, want 20x16", b.Dx(), b.Dy())
	}

	gray := func(x, y int) bool {
		r, g, b, _ := img.At(x, y).RGBA()
		return r == g && g == b
	}
	// Middle of the centre voxel is tinted by the first layer
	if gray(6, 6) {
		t.Error("Region voxel should be coloured")
	}
	// Far corner of the slice is untouched background
	if !gray(19, 0) {
		t.Error("Background away from every layer should stay gray")
	}
	if !gray(1, 14) {
		t.Error("Layer on another slice should not be drawn")
	}

	// The centre frame covers pixels [0, 12) on both axes with a 1 pixel border
	frame := []struct {
		x, y     int
		coloured bool
	}{
		{0, 6, true},
		{11, 6, true},
		{6, 0, true},
		{6, 11, true},
		{2, 6, false},
		{10, 8, false},
		{12, 6, false},
		{6, 12, false},
		{12, 12, false},
	}
	for _, p := range frame {
		if got := !gray(p.x, p.y); got != p.coloured {
			t.Errorf("Pixel (%d, %d) coloured = %v, want %v", p.x, p.y, got, p.coloured)
		}
	}

	plain, err := viewer.RenderOverlay(1, nil)
	if err != nil {
		t.Fatalf("RenderOverlay without layers failed: %v", err)
	}
	if r, _, _, _ := plain.At(6, 6).RGBA(); r>>8 != 0x80 {
		t.Errorf("Without layers the liver pixel should keep its gray level, got %#x", r>>8)
	}

	if _, err := viewer.RenderOverlay(5, layers); err == nil {
		t.Error("Expected error for slice outside the volume")
	}
}

func TestSaveSlice(t *testing.T) {
	viewer := NewViewer(createTestVolume(), 1)
	img := image.NewGray(image.Rect(0, 0, 5, 4))
	img.SetGray(1, 1, color.Gray{Y: 0x80})

	dir := filepath.Join(t.TempDir(), "nested")
	for _, name := range []string{"slice.png", "slice.jpg"} {
		path := filepath.Join(dir, name)
		if err := viewer.SaveSlice(img, path); err != nil {
			t.Fatalf("SaveSlice(%s) failed: %v", name, err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Failed to open %s: %v", name, err)
		}
		var decoded image.Image
		if filepath.Ext(name) == ".png" {
			decoded, err = png.Decode(f)
		} else {
			decoded, err = jpeg.Decode(f)
		}
		f.Close()
		if err != nil {
			t.Fatalf("Failed to decode %s: %v", name, err)
		}
		if decoded.Bounds() != img.Bounds() {
			t.Errorf("%s bounds = %v, want %v", name, decoded.Bounds(), img.Bounds())
		}
	}
}
