// Package pipeline runs centre finding and region extraction over labelled
// volumes and collects the results into reports.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"liverroi/internal/models"
	"liverroi/pkg/config"
	"liverroi/pkg/morph"
	"liverroi/pkg/roi"
	"liverroi/pkg/sector"
	"liverroi/pkg/visualization"
	"liverroi/pkg/volume"
)

// Params holds the processing parameters
type Params struct {
	// NumCores limits how many volumes ProcessBatch works on at once
	NumCores int

	// Spacing is assigned to volumes loaded from slice directories
	Spacing volume.Spacing

	// Anisotropic selects spacing-aware erosion
	Anisotropic bool

	// FillHollows relabels enclosed background before erosion
	FillHollows bool

	RadiusMM     float64
	Alpha        float64
	IncludeTumor bool
	Dims         roi.Dims
	Pattern      sector.Pattern

	// OverlayDir receives one PNG per volume when not empty
	OverlayDir string

	// OverlayScale is the number of pixels per voxel in overlays
	OverlayScale int
}

// ParamsFromConfig validates cfg and converts it into processing parameters
func ParamsFromConfig(cfg *config.Config) (*Params, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	pattern, err := cfg.Pattern()
	if err != nil {
		return nil, err
	}
	return &Params{
		NumCores:     cfg.Processing.NumCores,
		Spacing:      cfg.VoxelSpacing(),
		Anisotropic:  cfg.Processing.Anisotropic,
		FillHollows:  cfg.Processing.FillHollows,
		RadiusMM:     cfg.ROI.RadiusMM,
		Alpha:        cfg.ROI.Alpha,
		IncludeTumor: cfg.ROI.IncludeTumor,
		Dims:         roi.Dims(cfg.ROI.Dims),
		Pattern:      pattern,
		OverlayDir:   cfg.Output.OverlayDir,
		OverlayScale: 4,
	}, nil
}

// Processor runs the region extraction pipeline
type Processor struct {
	params *Params
	logger *zap.SugaredLogger
}

// NewProcessor creates a processor. A nil logger disables logging.
func NewProcessor(params *Params, logger *zap.SugaredLogger) *Processor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Processor{params: params, logger: logger}
}

// ProcessDir loads the slices in dir and processes them as one volume
func (p *Processor) ProcessDir(ctx context.Context, dir string) (*models.Report, error) {
	p.logger.Debugw("loading slices", "dir", dir)
	v, err := volume.LoadSliceDir(dir, p.params.Spacing)
	if err != nil {
		return nil, fmt.Errorf("failed to load slices: %w", err)
	}
	return p.ProcessVolume(ctx, dir, v)
}

// ProcessVolume finds the centre of v and extracts the centre and peripheral
// regions around it. v is not modified. A volume without liver or tumor gives
// a report with a nil Center and no regions.
func (p *Processor) ProcessVolume(ctx context.Context, name string, v *volume.LabelVolume) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.check(v); err != nil {
		return nil, err
	}
	start := time.Now()

	s, sp := v.Shape(), v.Spacing()
	report := &models.Report{
		Name:      name,
		Shape:     [3]int{s.Depth, s.Height, s.Width},
		SpacingMM: [3]float64{sp.Z, sp.H, sp.W},
	}

	work := v
	if p.params.FillHollows {
		work = v.Clone()
		report.HollowsFilled = work.FillBackgroundHollow()
		if report.HollowsFilled {
			p.logger.Debugw("filled enclosed background", "volume", name)
		}
	}

	if !morph.Erodible(work) {
		return nil, fmt.Errorf("volume %s: liver and tumor voxels never touch background; "+
			"enable processing.fillHollows or pad the slices with background", name)
	}

	trace, ok := morph.Erode(work, p.params.Anisotropic)
	report.Foreground = trace.Foreground
	report.ErosionRounds = len(trace.Rounds)
	if !ok {
		p.logger.Warnw("no liver or tumor voxels", "volume", name)
		report.Elapsed = time.Since(start)
		return report, nil
	}
	center := trace.Center
	report.Center = toVoxel(center)
	p.logger.Debugw("centre found", "volume", name, "center", center.String(),
		"rounds", len(trace.Rounds), "tied", len(trace.Final))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	centres := [4]volume.Coord{center}
	names := [4]string{"center"}
	peripheral := roi.PeripheralCenters(work, center, p.params.Pattern, p.params.Alpha)
	copy(centres[1:], peripheral[:])
	copy(names[1:], roi.RegionNames[:])

	var layers []visualization.Layer
	for i, c := range centres {
		region := roi.Extract(work, c, p.params.RadiusMM, p.params.IncludeTumor, p.params.Dims)
		points := region.Sorted()
		report.Regions = append(report.Regions, summarize(names[i], c, points, sp))
		layers = append(layers, visualization.Layer{Name: names[i], Center: c, Points: points})
	}

	if p.params.OverlayDir != "" {
		path, err := p.saveOverlay(work, name, center.Z, layers)
		if err != nil {
			p.logger.Warnw("failed to save overlay", "volume", name, "error", err)
		} else {
			report.Overlay = path
		}
	}

	report.Elapsed = time.Since(start)
	p.logger.Infow("volume processed", "volume", name, "foreground", report.Foreground,
		"elapsed", report.Elapsed)
	return report, nil
}

// ProcessBatch processes every directory in dirs using up to NumCores workers.
// Reports come back in the order of dirs; a directory that fails leaves a nil
// entry and contributes to the combined error.
func (p *Processor) ProcessBatch(ctx context.Context, dirs []string) ([]*models.Report, error) {
	reports := make([]*models.Report, len(dirs))

	var (
		mu   sync.Mutex
		errs error
	)
	g, ctx := errgroup.WithContext(ctx)
	if p.params.NumCores > 0 {
		g.SetLimit(p.params.NumCores)
	}
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := p.ProcessDir(ctx, dir)
			if err != nil {
				p.logger.Errorw("volume failed", "dir", dir, "error", err)
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", dir, err))
				mu.Unlock()
				return nil
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return reports, errs
}

// check turns conditions the core packages treat as contract violations into
// errors.
func (p *Processor) check(v *volume.LabelVolume) error {
	sp := v.Spacing()
	if err := sp.Validate(); err != nil {
		return fmt.Errorf("invalid spacing: %w", err)
	}
	if p.params.Anisotropic && sp.H != sp.W {
		return fmt.Errorf("anisotropic erosion needs equal height and width spacing, got %g and %g", sp.H, sp.W)
	}
	if !(p.params.RadiusMM >= 0) {
		return fmt.Errorf("radius must be non-negative, got %g", p.params.RadiusMM)
	}
	if !(p.params.Alpha >= 0 && p.params.Alpha <= 1) {
		return fmt.Errorf("alpha must be within [0, 1], got %g", p.params.Alpha)
	}
	if p.params.Dims != roi.Dims2D && p.params.Dims != roi.Dims3D {
		return fmt.Errorf("unsupported dims %d", int(p.params.Dims))
	}
	if !p.params.Pattern.Valid() {
		return fmt.Errorf("orientation %s has no peripheral directions", p.params.Pattern)
	}
	return nil
}

func (p *Processor) saveOverlay(g volume.Grid, name string, z int, layers []visualization.Layer) (string, error) {
	viewer := visualization.NewViewer(g, p.params.OverlayScale)
	img, err := viewer.RenderOverlay(z, layers)
	if err != nil {
		return "", err
	}
	path := filepath.Join(p.params.OverlayDir, overlayName(name))
	if err := viewer.SaveSlice(img, path); err != nil {
		return "", err
	}
	return path, nil
}

// overlayName derives a file name from a volume name such as an input path.
func overlayName(name string) string {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "volume"
	}
	return strings.ReplaceAll(base, " ", "_") + "_overlay.png"
}

// summarize computes physical statistics of a region grown from center.
func summarize(name string, center volume.Coord, points []volume.Coord, sp volume.Spacing) models.RegionSummary {
	sum := models.RegionSummary{
		Name:      name,
		Center:    *toVoxel(center),
		Voxels:    len(points),
		VolumeMM3: float64(len(points)) * sp.VoxelVolume(),
	}
	if len(points) == 0 {
		return sum
	}

	origin := sp.Physical(center)
	dists := make([]float64, len(points))
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	for i, c := range points {
		pos := sp.Physical(c)
		dists[i] = r3.Norm(r3.Sub(pos, origin))
		xs[i], ys[i], zs[i] = pos.X, pos.Y, pos.Z
	}

	if len(dists) > 1 {
		sum.MeanDistMM, sum.StdDistMM = stat.MeanStdDev(dists, nil)
	} else {
		sum.MeanDistMM = dists[0]
	}
	sum.MaxDistMM = floats.Max(dists)
	sum.CentroidMM = [3]float64{stat.Mean(xs, nil), stat.Mean(ys, nil), stat.Mean(zs, nil)}
	return sum
}

func toVoxel(c volume.Coord) *models.Voxel {
	return &models.Voxel{c.Z, c.H, c.W}
}
