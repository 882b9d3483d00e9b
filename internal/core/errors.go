package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind distinguishes the fatal failures of a distribution run.
type ErrorKind string

const (
	KindUnknown           ErrorKind = ""
	KindFormat            ErrorKind = "format"
	KindMissingHeaders    ErrorKind = "missing-headers"
	KindEmptyInput        ErrorKind = "empty-input"
	KindNoAcceptedRecords ErrorKind = "no-accepted-records"
	KindTargetCount       ErrorKind = "target-count"
)

// kinded is implemented by every fatal error of the pipeline.
type kinded interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first pipeline error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// FormatError reports input that cannot be decoded as the declared format.
type FormatError struct {
	Format Format
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "invalid " + e.Format.String() + " file"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error   { return e.Err }
func (e *FormatError) Kind() ErrorKind { return KindFormat }

// MissingHeadersError names the required columns absent from the header.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required column(s): %s (required: %s)",
		strings.Join(e.Missing, ", "), strings.Join(RequiredHeaders, ", "))
}

func (e *MissingHeadersError) Kind() ErrorKind { return KindMissingHeaders }

// EmptyInputError reports a sheet with a header but no data rows.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string   { return "empty file: no data rows after header" }
func (e *EmptyInputError) Kind() ErrorKind { return KindEmptyInput }

// NoAcceptedRecordsError reports that every row failed validation.
// Rejections are kept for diagnostics.
type NoAcceptedRecordsError struct {
	Rejections []RowRejection
}

func (e *NoAcceptedRecordsError) Error() string {
	return fmt.Sprintf("no valid records found (%d rows rejected)", len(e.Rejections))
}

func (e *NoAcceptedRecordsError) Kind() ErrorKind { return KindNoAcceptedRecords }

// TargetCountError reports a roster that does not hold exactly RequiredTargets agents.
type TargetCountError struct {
	Found int
}

func (e *TargetCountError) Error() string {
	return fmt.Sprintf("exactly %d active agents are required for distribution, found %d",
		RequiredTargets, e.Found)
}

func (e *TargetCountError) Kind() ErrorKind { return KindTargetCount }
