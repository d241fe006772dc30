package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"liverroi/internal/models"
)

// WriteReports encodes the non-nil reports as a YAML list
func WriteReports(w io.Writer, reports []*models.Report) error {
	out := make([]*models.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("error encoding reports: %w", err)
	}
	return enc.Close()
}

// SaveReports writes the reports to path, creating its directory if needed
func SaveReports(path string, reports []*models.Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteReports(f, reports)
}

// LoadReports reads reports written by SaveReports
func LoadReports(path string) ([]*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading report file: %w", err)
	}
	var reports []*models.Report
	if err := yaml.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("error parsing report file: %w", err)
	}
	return reports, nil
}
