package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/ports"
)

const (
	reportFileMode  = 0o644
	reportDirMode   = 0o755
	tempFilePattern = ".report-*.csv.tmp"
)

type Writer struct{}

var _ ports.ReportWriter = Writer{}

// Write replaces path with a Device column and one value column.
func (Writer) Write(path string, column string, rows []domain.ReportRow) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Device", column}); err != nil {
		return fmt.Errorf("encode report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Device, row.Value}); err != nil {
			return fmt.Errorf("encode report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), reportDirMode); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp report file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(buf.Bytes()); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp report file: %w", err)
	}

	if err := tempFile.Chmod(reportFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp report file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp report file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace report file: %w", err)
	}

	cleanup = false
	return nil
}
