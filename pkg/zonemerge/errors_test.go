package zonemerge

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "ParseError with line",
			err:     &ParseError{Message: "zone \"body\" is never closed", Token: "<ls_body>", Position: 6, Line: 1, Column: 7},
			wantMsg: "parse error at line 1, column 7 near '<ls_body>': zone \"body\" is never closed",
		},
		{
			name:    "ParseError without line",
			err:     &ParseError{Message: "unexpected tag", Position: 42},
			wantMsg: "parse error at position 42: unexpected tag",
		},
		{
			name:    "single validation issue",
			err:     &ValidationError{Issues: []ValidationIssue{{Field: "zones", Message: "is required"}}},
			wantMsg: "validation error: zones - is required",
		},
		{
			name: "several validation issues",
			err: &ValidationError{Issues: []ValidationIssue{
				{Field: "zones[0].zonename", Message: "is required"},
				{Field: "zones[1].zonedelete", Message: "must be a boolean, got string"},
			}},
			wantMsg: "2 validation issues:\n  zones[0].zonename: is required\n  zones[1].zonedelete: must be a boolean, got string",
		},
		{
			name:    "NotLoadedError",
			err:     &NotLoadedError{What: "template"},
			wantMsg: "template has not been loaded",
		},
		{
			name:    "IOError",
			err:     &IOError{Operation: "read template", Path: "letter.txt", Cause: errors.New("permission denied")},
			wantMsg: "io error during read template of 'letter.txt': permission denied",
		},
		{
			name:    "IOError without path",
			err:     &IOError{Operation: "decode input", Cause: errors.New("unexpected EOF")},
			wantMsg: "io error during decode input: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	parseErr := NewParseError("bad tag", "</ls_x>", 0, 1, 1)
	wrapped := WithContext(parseErr, "parse template", map[string]interface{}{"path": "a.txt"})

	if !IsParseError(wrapped) {
		t.Error("IsParseError should see through ContextError")
	}
	if IsValidationError(wrapped) || IsNotLoadedError(wrapped) || IsIOError(wrapped) {
		t.Error("predicates matched the wrong error type")
	}
	if !IsNotLoadedError(&NotLoadedError{What: "input data"}) {
		t.Error("IsNotLoadedError returned false")
	}
	if !IsValidationError(&ValidationError{}) {
		t.Error("IsValidationError returned false")
	}
}

func TestIOErrorWrapping(t *testing.T) {
	err := NewIOError("read template", "missing.txt", fs.ErrNotExist)

	if !IsIOError(err) {
		t.Fatalf("NewIOError should return *IOError, got %T", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is() should return true for the wrapped cause")
	}
}

func TestNewParseError(t *testing.T) {
	err := NewParseError("row tag outside of a zone", "<ls_row>", 12, 2, 3)

	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("NewParseError should return *ParseError, got %T", err)
	}
	if parseErr.Token != "<ls_row>" || parseErr.Position != 12 || parseErr.Line != 2 || parseErr.Column != 3 {
		t.Errorf("NewParseError fields = %+v", parseErr)
	}
}

func TestErrorContext(t *testing.T) {
	baseErr := errors.New("boom")
	err := WithContext(baseErr, "merge job", map[string]interface{}{"job": "42"})

	if got := err.Error(); got != "merge job [job=42]: boom" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}
	if WithContext(nil, "noop", nil) != nil {
		t.Error("WithContext(nil) should return nil")
	}
}

func TestMultiError(t *testing.T) {
	multi := NewMultiError()
	if multi.Err() != nil {
		t.Error("empty MultiError.Err() should be nil")
	}

	first := &NotLoadedError{What: "template"}
	multi.Add(first)
	multi.Add(nil)
	if multi.Len() != 1 {
		t.Errorf("Len() = %d, want 1", multi.Len())
	}
	if multi.Err() != first {
		t.Error("single-error MultiError.Err() should return that error")
	}

	multi.Add(NewIOError("write output", "out.txt", fs.ErrPermission))
	err := multi.Err()
	if err != multi {
		t.Fatalf("Err() = %v, want the MultiError", err)
	}
	if !strings.HasPrefix(err.Error(), "2 errors occurred:") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsNotLoadedError(err) || !errors.Is(err, fs.ErrPermission) {
		t.Error("MultiError should expose collected errors to errors.Is/As")
	}
}
