package volume

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// LoadSliceDir builds a label volume from a directory of 2D PNG label images,
// one file per slice. Slices are ordered by the number embedded in their file
// name (slice_2.png sorts before slice_10.png) and each pixel's gray value is
// taken as its label.
//
// JPEG files are rejected: lossy compression shifts label values along edges.
// All slices must share the same dimensions. Decoding failures are collected and
// reported together.
func LoadSliceDir(dir string, spacing Spacing) (*LabelVolume, error) {
	if err := spacing.Validate(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading slice directory: %w", err)
	}

	var (
		files []string
		errs  error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png":
			files = append(files, e.Name())
		case ".jpg", ".jpeg":
			errs = multierr.Append(errs, fmt.Errorf("slice %s is JPEG, label slices must be PNG", e.Name()))
		}
	}
	if errs != nil {
		return nil, errs
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PNG slices found in %s", dir)
	}

	sort.SliceStable(files, func(i, j int) bool {
		ni, nj := extractNumber(files[i]), extractNumber(files[j])
		if ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})

	var slices []image.Image
	for _, name := range files {
		img, err := loadImage(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to load slice %s: %w", name, err))
			continue
		}
		slices = append(slices, img)
	}
	if errs != nil {
		return nil, errs
	}

	return FromImages(slices, spacing)
}

// FromImages stacks 2D label images into a volume. Image i becomes slice Z=i.
// A gray value above Boundary is an error.
func FromImages(slices []image.Image, spacing Spacing) (*LabelVolume, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("no slices given")
	}
	b := slices[0].Bounds()
	shape := Shape{Depth: len(slices), Height: b.Dy(), Width: b.Dx()}
	v := NewLabelVolume(shape, spacing)

	for z, img := range slices {
		ib := img.Bounds()
		if ib.Dx() != shape.Width || ib.Dy() != shape.Height {
			return nil, fmt.Errorf("slice %d is %dx%d, expected %dx%d",
				z, ib.Dx(), ib.Dy(), shape.Width, shape.Height)
		}
		plane := v.Slice(z)
		for y := 0; y < shape.Height; y++ {
			for x := 0; x < shape.Width; x++ {
				g := color.GrayModel.Convert(img.At(ib.Min.X+x, ib.Min.Y+y)).(color.Gray)
				if Label(g.Y) > Boundary {
					return nil, fmt.Errorf("slice %d pixel (%d, %d) has value %d, labels stop at %d",
						z, x, y, g.Y, Boundary)
				}
				plane[y*shape.Width+x] = Label(g.Y)
			}
		}
	}
	return v, nil
}

// extractNumber returns the digits of a file name as an integer, or -1 when the
// name has none.
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	var digits strings.Builder
	for _, c := range base {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 0 {
		return -1
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return -1
	}
	return n
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}
