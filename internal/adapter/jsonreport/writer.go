// Package jsonreport persists scan results and assessments as JSON
// files.
package jsonreport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bytemomo/scylla/internal/domain"
	"bytemomo/scylla/internal/intelligence"
)

type Writer struct {
	OutDir string // e.g., ./output
}

func New(out string) *Writer { return &Writer{OutDir: out} }

// Report is the aggregate document written at the end of a batch.
type Report struct {
	Version         string                  `json:"version"`
	GeneratedAt     time.Time               `json:"generated_at"`
	Results         []domain.ScanResult     `json:"results"`
	Assessment      domain.RiskAssessment   `json:"assessment"`
	Recommendations []domain.Recommendation `json:"recommendations,omitempty"`
	Narrative       *intelligence.Analysis  `json:"narrative,omitempty"`
}

// Save writes one target's result under runs/, named after the target.
func (w *Writer) Save(res domain.ScanResult) error {
	dir := filepath.Join(w.OutDir, "runs")
	_ = os.MkdirAll(dir, 0o755)
	name := sanitizeName(res.Target) + "_" + string(res.Mode) + ".json"
	return writeJSON(filepath.Join(dir, name), res)
}

// Aggregate writes the batch report and returns its path.
func (w *Writer) Aggregate(report Report) (string, error) {
	_ = os.MkdirAll(w.OutDir, 0o755)
	if report.Version == "" {
		report.Version = "1.0"
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	path := filepath.Join(w.OutDir, "assessment.json")
	return path, writeJSON(path, report)
}

// sanitizeName makes a target address safe as a file name.
func sanitizeName(target string) string {
	r := strings.NewReplacer("/", "_", ":", "_", " ", "_")
	return r.Replace(target)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
