package models

import (
	"strconv"
)

// ─── shared formatting helpers (package-private) ────────────────────────

func itoa(v int) string { return strconv.Itoa(v) }
func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
func ftoa32(v float32, prec int) string {
	return strconv.FormatFloat(float64(v), 'f', prec, 32)
}

// CSVRowWriter is the interface every loggable model must satisfy.
type CSVRowWriter interface {
	CSVHeader() []string
	CSVRow() []string
}

var (
	_ CSVRowWriter = (*FrameRecord)(nil)
	_ CSVRowWriter = (*InertialSample)(nil)
	_ CSVRowWriter = (*FrameReport)(nil)
)
