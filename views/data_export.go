package views

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// CSVWriter is a concurrency-safe, buffered delimited-text writer used for
// every text artifact of a run: the comma-separated sync log and the
// space-separated trajectory and timing files.
//
//   - Underlying bufio.Writer absorbs write syscall overhead.
//   - Row encode errors are sticky and surface from Flush/Close, so the
//     per-frame hot path never branches on I/O.
type CSVWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	rows uint64
}

// NewCSVWriter creates the file and writes the header row if one is given.
// comma selects the field delimiter (',' for CSV, ' ' for trajectories).
func NewCSVWriter(path string, bufSizeBytes int, comma rune, header []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create %s: %w", path, err)
	}

	if bufSizeBytes <= 0 {
		bufSizeBytes = 256 * 1024 // 256 KB default
	}

	bw := bufio.NewWriterSize(f, bufSizeBytes)
	cw := csv.NewWriter(bw)
	if comma != 0 {
		cw.Comma = comma
	}

	w := &CSVWriter{
		path: path,
		file: f,
		buf:  bw,
		csv:  cw,
	}

	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("csv write header: %w", err)
		}
	}

	return w, nil
}

// WriteRow appends a single row. Thread-safe.
func (w *CSVWriter) WriteRow(row []string) {
	w.mu.Lock()
	_ = w.csv.Write(row) // error is buffered; checked on Flush
	w.rows++
	w.mu.Unlock()
}

// Flush pushes the buffered data to the OS.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *CSVWriter) flushLocked() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("csv write %s: %w", w.path, err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("csv flush %s: %w", w.path, err)
	}
	return nil
}

// Close flushes remaining data and closes the file. The first error wins.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	ferr := w.flushLocked()
	cerr := w.file.Close()
	w.file = nil
	if ferr != nil {
		return ferr
	}
	if cerr != nil {
		return fmt.Errorf("csv close %s: %w", w.path, cerr)
	}
	return nil
}

// Rows returns the number of data rows written (excludes header).
func (w *CSVWriter) Rows() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Path returns the file the writer was created on.
func (w *CSVWriter) Path() string { return w.path }
