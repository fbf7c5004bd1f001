package utils

import (
	"errors"
	"fmt"
)

// ─── Error taxonomy ─────────────────────────────────────────────────────
//
// Every failure in the playback driver is fatal. The sentinels below let
// the CLI classify a failure with errors.Is without string matching.

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrDatasetIntegrity = errors.New("dataset integrity error")
	ErrDecode           = errors.New("decode error")
	ErrParse            = errors.New("parse error")
)

// PlaybackError attaches the offending path (and line, when known) to one
// of the sentinel kinds above.
type PlaybackError struct {
	Kind error
	Path string
	Line int
	Err  error
}

func (e *PlaybackError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	switch {
	case loc != "" && e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, loc, e.Err)
	case loc != "":
		return fmt.Sprintf("%v: %s", e.Kind, loc)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

// Is reports a match against the error kind so errors.Is(err, ErrParse)
// works through any amount of fmt.Errorf wrapping.
func (e *PlaybackError) Is(target error) bool { return target == e.Kind }

func (e *PlaybackError) Unwrap() error { return e.Err }

func ConfigurationError(path string, err error) error {
	return &PlaybackError{Kind: ErrConfiguration, Path: path, Err: err}
}

func DatasetIntegrityError(path string, err error) error {
	return &PlaybackError{Kind: ErrDatasetIntegrity, Path: path, Err: err}
}

func DecodeError(path string, err error) error {
	return &PlaybackError{Kind: ErrDecode, Path: path, Err: err}
}

func ParseError(path string, line int, err error) error {
	return &PlaybackError{Kind: ErrParse, Path: path, Line: line, Err: err}
}

// ErrorKind returns a short label for logging and metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrDatasetIntegrity):
		return "dataset_integrity"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrParse):
		return "parse"
	}
	return "unknown"
}
