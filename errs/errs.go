// Package errs collects the sentinel and structured error values the
// engine's components return, following the sentinel-error convention
// observed at mebo's blob decoder call sites (errs.ErrInvalidHeaderSize,
// errs.ErrInvalidIndexEntrySize, ...). Sentinel values support
// errors.Is; the structured types below carry the context callers need
// to build an INGEST_ERROR message or a consumer-visible error string.
package errs

import (
	"errors"
	"fmt"
)

// Sentinels: codec-level parse failures (invalid magic, unknown tag,
// truncation), plus abort, transport crash, SHED eviction, and a
// finished-encoder error.
var (
	ErrInvalidMagic    = errors.New("invalid magic: not a batch buffer")
	ErrUnknownTypeTag  = errors.New("unknown column type tag")
	ErrTruncated       = errors.New("truncated buffer: declared length exceeds available bytes")
	ErrAborted         = errors.New("aborted by consumer")
	ErrTransportCrash  = errors.New("worker transport crashed")
	ErrShed            = errors.New("ingest command evicted under SHED backpressure")
	ErrEncoderFinished = errors.New("encoder already finished")
)

// SchemaMismatch is a pre-commit error: the batch column at columnIndex
// does not declare the schema's type for that position.
type SchemaMismatch struct {
	ColumnIndex int
	Name        string
	Expected    string
	Got         string
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("Schema type mismatch at column %d (%s): expected %s, got %s",
		e.ColumnIndex, e.Name, e.Expected, e.Got)
}

// IntegrityViolation is a post-commit error: a column's row count diverged
// from the store's expected total after an append that should not have
// been able to fail (typical cause: parallel list_utf8 columns with
// mismatched per-row item counts).
type IntegrityViolation struct {
	ColumnName    string
	ColumnRows    int
	ExpectedRows  int
}

func (e *IntegrityViolation) Error() string {
	return fmt.Sprintf("Integrity violation: column %q has %d rows, expected %d",
		e.ColumnName, e.ColumnRows, e.ExpectedRows)
}

// BatchMessage formats the user-visible store error string for a failed
// batch: "Batch {seq}: {message}".
func BatchMessage(seq uint32, err error) string {
	return fmt.Sprintf("Batch %d: %s", seq, err.Error())
}
