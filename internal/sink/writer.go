// Fix sinks: pluggable consumers of the location stream
package sink

import (
	"encoding/json"
	"fmt"

	"fieldtrack/internal/geo"
)

// FixWriter is implemented by every output sink.
type FixWriter interface {
	Write(geo.FixRow) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]geo.FixRow) error
}

// StdoutWriter prints fix rows to STDOUT.
type StdoutWriter struct{}

// Write outputs a single fix row.
func (w *StdoutWriter) Write(row geo.FixRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple fix rows.
func (w *StdoutWriter) WriteBatch(rows []geo.FixRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// MultiWriter fans fix rows out to multiple writers.
type MultiWriter struct {
	writers []FixWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...FixWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a fix row to all writers.
func (mw *MultiWriter) Write(row geo.FixRow) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple fix rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []geo.FixRow) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}
