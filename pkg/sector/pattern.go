// Package sector describes how the liver sits inside an axial slice.
//
// A Pattern pairs the direction of the fixed ray of the liver sector with the
// rotational sense in which the free ray lies. Directions are expressed in the
// Height/Width frame of a slice, not in image x/y: from (10, 10), (11, 10) is
// HeightPos, (9, 10) is HeightNeg, (10, 11) is WidthPos and (10, 9) is WidthNeg.
package sector

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"liverroi/pkg/volume"
)

// AxisDirection is the direction of the fixed ray of a sector.
type AxisDirection int

const (
	HeightPos AxisDirection = iota
	HeightNeg
	WidthPos
	WidthNeg
)

var axisNames = [...]string{"height+", "height-", "width+", "width-"}

func (a AxisDirection) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return fmt.Sprintf("AxisDirection(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxisDirection accepts the names produced by String.
func ParseAxisDirection(s string) (AxisDirection, error) {
	for i, n := range axisNames {
		if strings.EqualFold(s, n) {
			return AxisDirection(i), nil
		}
	}
	return 0, fmt.Errorf("unknown axis direction %q", s)
}

// Rotation is the sense in which the free ray lies relative to the fixed one.
type Rotation int

const (
	Clockwise Rotation = iota
	CounterClockwise
)

func (r Rotation) String() string {
	switch r {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counterclockwise"
	}
	return fmt.Sprintf("Rotation(%d)", int(r))
}

// ParseRotation accepts "clockwise"/"cw" and "counterclockwise"/"ccw".
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(s) {
	case "clockwise", "cw":
		return Clockwise, nil
	case "counterclockwise", "ccw":
		return CounterClockwise, nil
	}
	return 0, fmt.Errorf("unknown rotation %q", s)
}

// Pattern is the orientation descriptor of a scan.
type Pattern struct {
	Axis     AxisDirection
	Rotation Rotation
}

func (p Pattern) String() string {
	return fmt.Sprintf("%s/%s", p.Axis, p.Rotation)
}

// Direction is a unit step inside a slice.
type Direction struct {
	DH, DW int
}

var (
	HeightPos1 = Direction{DH: 1}
	HeightNeg1 = Direction{DH: -1}
	WidthPos1  = Direction{DW: 1}
	WidthNeg1  = Direction{DW: -1}
)

// Step returns c moved k steps along d. The slice index is unchanged.
func (d Direction) Step(c volume.Coord, k int) volume.Coord {
	return volume.Coord{Z: c.Z, H: c.H + k*d.DH, W: c.W + k*d.DW}
}

func (d Direction) String() string {
	switch d {
	case HeightPos1:
		return "H+"
	case HeightNeg1:
		return "H-"
	case WidthPos1:
		return "W+"
	case WidthNeg1:
		return "W-"
	}
	return fmt.Sprintf("(%d, %d)", d.DH, d.DW)
}

// Valid reports whether p is one of the orientations seen in practice.
func (p Pattern) Valid() bool {
	_, ok := p.unitVectors()
	return ok
}

// UnitVectors returns the anterior, posterior and lateral directions for p.
// Calling it on a pattern that is not Valid is a programming error and panics.
func (p Pattern) UnitVectors() [3]Direction {
	dirs, ok := p.unitVectors()
	if !ok {
		panic(fmt.Sprintf("sector: no peripheral directions for pattern %s", p))
	}
	return dirs
}

func (p Pattern) unitVectors() ([3]Direction, bool) {
	switch p {
	case Pattern{HeightPos, CounterClockwise}:
		return [3]Direction{HeightPos1, HeightNeg1, WidthNeg1}, true
	case Pattern{HeightNeg, Clockwise}:
		return [3]Direction{HeightNeg1, HeightPos1, WidthNeg1}, true
	case Pattern{HeightPos, Clockwise}:
		return [3]Direction{HeightPos1, HeightNeg1, WidthPos1}, true
	}
	return [3]Direction{}, false
}

// ErrNotAxisVector is returned by FromQForm when a quaternion component is not
// an integer.
var ErrNotAxisVector = errors.New("sector: quaternion is not an axis vector")

// UnknownPatternError is returned by FromQForm for an integral quaternion that
// maps to no known orientation.
type UnknownPatternError struct {
	QFormCode int16
	B, C, D   int8
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("sector: unknown orientation for qform %d with quaternion (%d, %d, %d)",
		e.QFormCode, e.B, e.C, e.D)
}

// FromQForm derives the pattern from the qform code and quaternion b/c/d
// fields of a NIfTI header.
func FromQForm(qformCode int16, b, c, d float32) (Pattern, error) {
	toInt := func(f float32) (int8, bool) {
		r := math.Round(float64(f))
		return int8(r), math.Abs(float64(f)-r) < 1e-9
	}
	qb, okB := toInt(b)
	qc, okC := toInt(c)
	qd, okD := toInt(d)
	if !okB || !okC || !okD {
		return Pattern{}, ErrNotAxisVector
	}

	type key struct {
		code    int16
		b, c, d int8
	}
	switch (key{qformCode, qb, qc, qd}) {
	case key{0, 0, 0, 0}, key{1, 0, 1, 0}, key{2, 0, 1, 0}:
		return Pattern{HeightPos, CounterClockwise}, nil
	case key{2, 0, 0, 0}:
		return Pattern{HeightPos, Clockwise}, nil
	case key{2, 0, 0, 1}:
		return Pattern{HeightNeg, Clockwise}, nil
	}
	return Pattern{}, &UnknownPatternError{QFormCode: qformCode, B: qb, C: qc, D: qd}
}
