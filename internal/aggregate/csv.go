package aggregate

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
)

// SummaryWriter writes aggregation summary rows as CSV.
type SummaryWriter struct {
	w *csv.Writer
}

// NewSummaryWriter creates a CSV summary writer.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the column header.
func (sw *SummaryWriter) WriteHeader() error {
	return sw.w.Write([]string{"gene", "region", "region_id", "condition", "methylation", "meth_reads", "coverage"})
}

// Write writes a single summary row. An undefined methylation ratio
// (zero coverage) is written as an empty field.
func (sw *SummaryWriter) Write(row SummaryRow) error {
	meth := ""
	if !math.IsNaN(row.Methylation) {
		meth = strconv.FormatFloat(row.Methylation, 'g', -1, 64)
	}
	return sw.w.Write([]string{
		row.Gene,
		string(row.Region),
		strconv.Itoa(row.RegionID),
		row.Condition,
		meth,
		strconv.FormatFloat(row.MethReads, 'g', -1, 64),
		strconv.FormatFloat(row.Coverage, 'g', -1, 64),
	})
}

// WriteAll writes all rows.
func (sw *SummaryWriter) WriteAll(rows []SummaryRow) error {
	for _, row := range rows {
		if err := sw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output and reports any write error.
func (sw *SummaryWriter) Flush() error {
	sw.w.Flush()
	return sw.w.Error()
}
