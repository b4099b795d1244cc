package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

// ReportStore persists bisection reports.
type ReportStore interface {
	SaveReport(path m.Path, report m.Report) error
	LoadReport(path m.Path) (m.Report, error)
}

// LocalReportStore writes reports as JSON, or YAML when the path ends in
// .yaml/.yml.
type LocalReportStore struct{}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveReport encodes report and writes it to path, creating parent directories.
func (s *LocalReportStore) SaveReport(path m.Path, report m.Report) error {
	var buf bytes.Buffer

	switch m.FormatFromPath(path) {
	case m.FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)

		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}

		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	default:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}

	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	if err := os.WriteFile(string(path), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads a report previously written by SaveReport.
func (s *LocalReportStore) LoadReport(path m.Path) (m.Report, error) {
	// #nosec G304 - report path is supplied by the user
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Report{}, fmt.Errorf("read report: %w", err)
	}

	var report m.Report

	switch m.FormatFromPath(path) {
	case m.FormatYAML:
		err = yaml.Unmarshal(data, &report)
	default:
		err = json.Unmarshal(data, &report)
	}

	if err != nil {
		return m.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}
