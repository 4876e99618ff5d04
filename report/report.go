// Package report renders the hit counts of cache replays.
//
// A report has one line per policy family. Every configuration of the family
// is written as `hits,accesses`, configurations are separated by "; " and the
// line ends with ";".
package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/mem/cache"
)

// FormatFamily renders the results of one family, without a line break.
func FormatFamily(results []cache.Result) string {
	var sb strings.Builder

	for i, r := range results {
		if i > 0 {
			sb.WriteString("; ")
		}

		sb.WriteString(strconv.Itoa(r.Hits))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(r.Accesses))
	}

	sb.WriteByte(';')

	return sb.String()
}

// A Writer writes report lines.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteFamily writes the line of one family.
func (w *Writer) WriteFamily(results []cache.Result) error {
	if _, err := w.w.WriteString(FormatFamily(results)); err != nil {
		return err
	}

	return w.w.WriteByte('\n')
}

// WriteReport writes one line per family, in order, and flushes.
func (w *Writer) WriteReport(families [][]cache.Result) error {
	for _, results := range families {
		if err := w.WriteFamily(results); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
