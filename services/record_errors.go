package services

import (
	"fmt"
)

// MissingCell is the raw text reported when an identifier cell is absent or not text
const MissingCell = "<missing>"

// WriteErrorKind classifies workbook write failures
type WriteErrorKind int

const (
	// WriteErrSheetCreation means the records sheet could not be created or addressed
	WriteErrSheetCreation WriteErrorKind = iota + 1
	// WriteErrCodec means the workbook could not be serialized or persisted
	WriteErrCodec
)

func (k WriteErrorKind) String() string {
	switch k {
	case WriteErrSheetCreation:
		return "sheet creation"
	case WriteErrCodec:
		return "codec"
	default:
		return "unknown"
	}
}

// WriteError is returned by the workbook writer
type WriteError struct {
	Kind  WriteErrorKind
	Sheet string
	Err   error
}

func (e *WriteError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("write records: %s error on sheet %q: %v", e.Kind, e.Sheet, e.Err)
	}
	return fmt.Sprintf("write records: %s error: %v", e.Kind, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ReadErrorKind classifies workbook read failures
type ReadErrorKind int

const (
	// ReadErrCodec means the workbook could not be opened or a sheet could not be parsed
	ReadErrCodec ReadErrorKind = iota + 1
	// ReadErrIdentifier means the ID cell was missing or not a valid UUID
	ReadErrIdentifier
	// ReadErrNumeric means an order cell was missing or invalid under the strict policy
	ReadErrNumeric
)

func (k ReadErrorKind) String() string {
	switch k {
	case ReadErrCodec:
		return "codec"
	case ReadErrIdentifier:
		return "identifier parse"
	case ReadErrNumeric:
		return "numeric parse"
	default:
		return "unknown"
	}
}

// ReadError is returned by the workbook reader. Raw holds the offending cell text
// for identifier and numeric failures.
type ReadError struct {
	Kind   ReadErrorKind
	Sheet  string
	Row    int
	Column string
	Raw    string
	Err    error
}

func (e *ReadError) Error() string {
	switch e.Kind {
	case ReadErrIdentifier, ReadErrNumeric:
		return fmt.Sprintf("read records: %s error for '%s' (sheet %q, row %d, column %s)", e.Kind, e.Raw, e.Sheet, e.Row, e.Column)
	default:
		if e.Sheet != "" {
			return fmt.Sprintf("read records: %s error on sheet %q: %v", e.Kind, e.Sheet, e.Err)
		}
		return fmt.Sprintf("read records: %s error: %v", e.Kind, e.Err)
	}
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
