package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"liverroi/internal/models"
)

func TestSaveAndLoadReports(t *testing.T) {
	report, err := NewProcessor(testParams(1), nil).ProcessVolume(context.Background(), "cube", cubeVolume())
	if err != nil {
		t.Fatalf("ProcessVolume failed: %v", err)
	}
	empty := &models.Report{Name: "empty", Shape: [3]int{1, 1, 1}, SpacingMM: [3]float64{1, 1, 1}}

	path := filepath.Join(t.TempDir(), "out", "report.yaml")
	if err := SaveReports(path, []*models.Report{report, nil, empty}); err != nil {
		t.Fatalf("SaveReports failed: %v", err)
	}
	loaded, err := LoadReports(path)
	if err != nil {
		t.Fatalf("LoadReports failed: %v", err)
	}
	if diff := cmp.Diff([]*models.Report{report, empty}, loaded); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReportsOmitsMissingCenter(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReports(&buf, []*models.Report{{Name: "empty"}}); err != nil {
		t.Fatalf("WriteReports failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "name: empty") {
		t.Errorf("Output should contain the report name:\n%s", out)
	}
	if strings.Contains(out, "center:") || strings.Contains(out, "regions:") {
		t.Errorf("Empty report should not list a centre or regions:\n%s", out)
	}
}
