package sink

import (
	"encoding/json"
	"os"

	"fieldtrack/internal/geo"
)

// FileWriter appends fix rows to a JSONL file, one object per line. The
// resulting log can be fed back through Replay.
type FileWriter struct {
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates or truncates the log file.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write logs a single fix row.
func (f *FileWriter) Write(row geo.FixRow) error {
	return f.enc.Encode(row)
}

// WriteBatch logs multiple fix rows.
func (f *FileWriter) WriteBatch(rows []geo.FixRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	return f.file.Close()
}
