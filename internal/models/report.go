package models

import "time"

// Voxel is a voxel coordinate as written to reports, ordered (z, h, w).
type Voxel [3]int

// RegionSummary describes one extracted region of interest
type RegionSummary struct {
	// Name is "center" or one of the peripheral region names
	Name string `yaml:"name"`

	// Center is the voxel the region was grown from
	Center Voxel `yaml:"center"`

	// Voxels is the number of foreground voxels in the region
	Voxels int `yaml:"voxels"`

	// VolumeMM3 is the physical volume of the region
	VolumeMM3 float64 `yaml:"volumeMM3"`

	// MeanDistMM and StdDistMM describe the physical distance of region voxels
	// to Center
	MeanDistMM float64 `yaml:"meanDistMM"`
	StdDistMM  float64 `yaml:"stdDistMM"`

	// MaxDistMM is the distance of the farthest voxel, never above the radius
	MaxDistMM float64 `yaml:"maxDistMM"`

	// CentroidMM is the physical centroid (x, y, z) of the region
	CentroidMM [3]float64 `yaml:"centroidMM"`
}

// Report holds everything computed for one labelled volume
type Report struct {
	// Name identifies the volume, usually its input directory
	Name string `yaml:"name"`

	// Shape is (depth, height, width) in voxels
	Shape [3]int `yaml:"shape"`

	// SpacingMM is (z, height, width) in mm
	SpacingMM [3]float64 `yaml:"spacingMM"`

	// HollowsFilled is set when enclosed background had to be relabelled
	HollowsFilled bool `yaml:"hollowsFilled"`

	// Foreground is the number of liver and tumor voxels
	Foreground int `yaml:"foreground"`

	// ErosionRounds counts the rounds needed to reach the centre
	ErosionRounds int `yaml:"erosionRounds"`

	// Center is nil when the volume has no foreground
	Center *Voxel `yaml:"center,omitempty"`

	// Regions lists the centre region followed by the peripheral regions
	Regions []RegionSummary `yaml:"regions,omitempty"`

	// Overlay is the path of the rendered overlay, if any
	Overlay string `yaml:"overlay,omitempty"`

	// Elapsed is the processing time of the volume
	Elapsed time.Duration `yaml:"elapsed"`
}
