package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dd0wney/libcert/pkg/liberty"
)

// csvHeader is the column layout of the table point CSV.
var csvHeader = []string{
	"source", "cell", "pin", "related_pin", "timing_type", "when", "sense",
	"table_type", "sigma_type", "row", "col", "index_1", "index_2", "value",
}

// CSVWriter appends table points from any number of models to one CSV
// stream. The header is written before the first row.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
	rows        int64
}

// NewCSVWriter wraps w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write appends the points of m, tagged with source, and returns how many
// rows were written.
func (c *CSVWriter) Write(source string, m *liberty.LibraryModel, scale float64) (int64, error) {
	if err := c.header(); err != nil {
		return 0, err
	}

	var n int64
	record := make([]string, len(csvHeader))
	for p := range Points(m, scale) {
		record[0] = source
		record[1] = p.Cell
		record[2] = p.Pin
		record[3] = p.RelatedPin
		record[4] = p.TimingType
		record[5] = p.When
		record[6] = p.Sense
		record[7] = p.TableType
		record[8] = p.Sigma
		record[9] = strconv.Itoa(p.Row)
		record[10] = strconv.Itoa(p.Col)
		record[11] = p.Index1
		record[12] = p.Index2
		record[13] = strconv.FormatFloat(p.Value, 'g', -1, 64)

		if err := c.w.Write(record); err != nil {
			return n, fmt.Errorf("failed to write CSV row: %w", err)
		}
		n++
	}
	c.rows += n
	return n, nil
}

// Rows returns the number of data rows written so far.
func (c *CSVWriter) Rows() int64 {
	return c.rows
}

// Flush writes buffered rows to the underlying writer. A header is written
// even when no model was added.
func (c *CSVWriter) Flush() error {
	if err := c.header(); err != nil {
		return err
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("CSV writer flush error: %w", err)
	}
	return nil
}

func (c *CSVWriter) header() error {
	if c.wroteHeader {
		return nil
	}
	if err := c.w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	c.wroteHeader = true
	return nil
}

// WriteCSV writes the points of a single model, header first.
func WriteCSV(w io.Writer, source string, m *liberty.LibraryModel, scale float64) (rows int64, retErr error) {
	cw := NewCSVWriter(w)
	defer func() {
		if err := cw.Flush(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	return cw.Write(source, m, scale)
}
