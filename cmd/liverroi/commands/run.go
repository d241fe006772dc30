package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"liverroi/pkg/config"
	"liverroi/pkg/pipeline"
)

func runCmd() *cobra.Command {
	var (
		overlayDir string
		reportFile string
		cores      int
		radius     float64
		dims       int
	)
	cmd := &cobra.Command{
		Use:   "run [slice-dir...]",
		Short: "Process one or more directories of label slices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags override the configuration file
			flags := cmd.Flags()
			if flags.Changed("overlay-dir") {
				cfg.Output.OverlayDir = overlayDir
			}
			if flags.Changed("report") {
				cfg.Output.ReportFile = reportFile
			}
			if flags.Changed("cores") {
				cfg.Processing.NumCores = cores
			}
			if flags.Changed("radius") {
				cfg.ROI.RadiusMM = radius
			}
			if flags.Changed("dims") {
				cfg.ROI.Dims = dims
			}
			if cfg.Output.Verbose && !verbose {
				if err := setLogger(true); err != nil {
					return err
				}
			}

			params, err := pipeline.ParamsFromConfig(cfg)
			if err != nil {
				return err
			}
			logger.Infow("starting", "volumes", len(args), "cores", params.NumCores,
				"anisotropic", params.Anisotropic, "radiusMM", params.RadiusMM, "dims", params.Dims.String(),
				"pattern", params.Pattern.String())

			start := time.Now()
			reports, batchErr := pipeline.NewProcessor(params, logger).ProcessBatch(cmd.Context(), args)

			if cfg.Output.ReportFile != "" {
				if err := pipeline.SaveReports(cfg.Output.ReportFile, reports); err != nil {
					return err
				}
				logger.Infow("report saved", "path", cfg.Output.ReportFile)
			} else if err := pipeline.WriteReports(os.Stdout, reports); err != nil {
				return err
			}

			logger.Infow("finished", "elapsed", time.Since(start))
			if batchErr != nil {
				return fmt.Errorf("some volumes failed: %w", batchErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&overlayDir, "overlay-dir", "", "directory for overlay images")
	cmd.Flags().StringVar(&reportFile, "report", "", "YAML report file (default stdout)")
	cmd.Flags().IntVar(&cores, "cores", 0, "number of volumes processed in parallel")
	cmd.Flags().Float64Var(&radius, "radius", 0, "region radius in mm")
	cmd.Flags().IntVar(&dims, "dims", 3, "2 for slice regions, 3 for spherical regions")
	return cmd
}
