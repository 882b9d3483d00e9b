package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError_PipelineErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "missing headers lists required and missing",
			err:      &MissingHeadersError{Missing: []string{"Notes"}},
			wantCode: "VAL004",
			wantMsg:  "Invalid headers. Required: FirstName, Phone, Notes. Missing: Notes",
		},
		{
			name:     "wrong roster size",
			err:      &TargetCountError{Found: 3},
			wantCode: "DST001",
			wantMsg:  "Exactly 5 active agents are required for distribution (found 3)",
		},
		{
			name:     "format error wrapped",
			err:      fmt.Errorf("upload: %w", &FormatError{Format: FormatXLSX, Detail: "workbook has no sheets"}),
			wantCode: "FILE002",
			wantMsg:  "invalid XLSX file: workbook has no sheets",
		},
		{
			name:     "empty input",
			err:      &EmptyInputError{},
			wantCode: "FILE005",
		},
		{
			name:     "no valid records",
			err:      &NoAcceptedRecordsError{},
			wantCode: "VAL007",
			wantMsg:  "No valid records found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.wantMsg != "" && got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
			if got.Action == "" {
				t.Error("Action should not be empty")
			}
		})
	}
}

func TestMapError_Patterns(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
	}{
		{errors.New("http: request body too large: file too large"), "FILE001"},
		{errors.New("no file provided"), "FILE004"},
		{ErrTooManyUploads, "UPL002"},
		{errors.New("validation failed: Name is required"), "VAL001"},
		{errors.New("invalid request body: unexpected EOF"), "VAL002"},
		{errors.New("invalid request body: http: request body too large"), "VAL003"},
		{errors.New("Agent not found"), "AGT001"},
		{errors.New("agent with this email already exists"), "AGT002"},
		{errors.New("distribution not found"), "DST002"},
		{errors.New("agent roster changed during distribution, please retry"), "DST003"},
		{fmt.Errorf("load roster: %w", context.Canceled), "UPL004"},
		{context.DeadlineExceeded, "UPL005"},
		{errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "DB004"},
		{errors.New("i/o timeout"), "DB006"},
		{errors.New("rate limit exceeded"), "RATE001"},
		{errors.New("something strange"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError(%q).Code = %q, want %q", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	if got := MapError(nil); got != (UserMessage{}) {
		t.Errorf("MapError(nil) = %+v, want zero value", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(&TargetCountError{Found: 0}) {
		t.Error("TargetCountError should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(&EmptyInputError{})
	if !strings.Contains(got, "(Code: FILE005)") {
		t.Errorf("FormatUserError = %q, want code suffix", got)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}
