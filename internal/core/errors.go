package core

import (
	"errors"
	"fmt"
)

// Kind classifies an ingestion failure
type Kind string

const (
	KindFileFormat Kind = "file_format"
	KindSchema     Kind = "schema"
	KindParse      Kind = "parse"
)

// Sentinels for errors.Is checks against an *IngestError
var (
	ErrFileFormat = errors.New("unsupported file format")
	ErrSchema     = errors.New("invalid schema")
	ErrParse      = errors.New("malformed value")
)

// IngestError describes why a file or edited table was rejected.
// Row is the 1-based row in the file (the header is row 1), 0 when not row specific.
// For an edited table (Table set) Row is the 1-based row number shown in the grid.
type IngestError struct {
	Kind   Kind
	Row    int
	Column string
	Table  bool
	Msg    string
	Err    error
}

func (e *IngestError) Error() string {
	msg := e.Msg
	where := "row"
	if e.Table {
		where = "table row"
	}
	if e.Row > 0 && e.Column != "" {
		msg = fmt.Sprintf("%s %d, column %q: %s", where, e.Row, e.Column, msg)
	} else if e.Row > 0 {
		msg = fmt.Sprintf("%s %d: %s", where, e.Row, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind
func (e *IngestError) Is(target error) bool {
	switch e.Kind {
	case KindFileFormat:
		return target == ErrFileFormat
	case KindSchema:
		return target == ErrSchema
	case KindParse:
		return target == ErrParse
	}
	return false
}

// KindOf returns the kind of an ingestion error, or "" for any other error
func KindOf(err error) Kind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

func fileFormatError(msg string, err error) *IngestError {
	return &IngestError{Kind: KindFileFormat, Msg: msg, Err: err}
}

func schemaError(row int, msg string) *IngestError {
	return &IngestError{Kind: KindSchema, Row: row, Msg: msg}
}

func parseError(row int, column, msg string) *IngestError {
	return &IngestError{Kind: KindParse, Row: row, Column: column, Msg: msg}
}
