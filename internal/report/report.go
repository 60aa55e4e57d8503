// Package report holds the size aggregation rows and writes them as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// GiB is the divisor applied to byte counts in the report.
const GiB = 1 << 30

// Column names, in output order.
const (
	ColumnProject     = "project"
	ColumnFSTotalSize = "fsTotalSize"
	ColumnIndexSize   = "indexSize"
)

// Row is one project with its largest filesystem size and summed index size,
// both in GiB rounded to three decimals. A nil metric had no numeric input.
type Row struct {
	Project     string   `json:"project" bson:"project"`
	FSTotalSize *float64 `json:"fsTotalSize" bson:"fsTotalSize"`
	IndexSize   *float64 `json:"indexSize" bson:"indexSize"`
}

// Header returns the CSV header for rows.
func Header() []string {
	return []string{ColumnProject, ColumnFSTotalSize, ColumnIndexSize}
}

// ScaleGiB converts bytes to GiB rounded to three decimals, half to even.
func ScaleGiB(bytes float64) float64 {
	return math.RoundToEven(bytes/GiB*1000) / 1000
}

// ScaleGiBPtr is ScaleGiB for optional values.
func ScaleGiBPtr(bytes *float64) *float64 {
	if bytes == nil {
		return nil
	}
	v := ScaleGiB(*bytes)
	return &v
}

// WriteCSV writes rows to path, replacing any existing file. The header is
// taken from the first row, so an empty result produces an empty file with no
// header line.
func WriteCSV(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result file %s: %w", path, err)
	}

	if err := writeRows(csv.NewWriter(f), rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write result file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close result file %s: %w", path, err)
	}
	return nil
}

func writeRows(w *csv.Writer, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := w.Write(Header()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Project, formatFloat(r.FSTotalSize), formatFloat(r.IndexSize)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
